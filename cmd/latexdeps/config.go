// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/latexdeps/internal/rules"
	"github.com/pdiddy/latexdeps/pkg/types"
)

// bindFlags binds config keys to the flags returned by lookup.
func bindFlags(keys map[string]string, lookup func(name string) *pflag.Flag) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// resolveConfig collects the run settings from viper.
func resolveConfig() types.ResolveConfig {
	return types.ResolveConfig{
		RuleFiles:      ruleFiles(),
		NoDefaultRules: viper.GetBool("no_default_rules"),
		Suffix:         viper.GetString("suffix"),
		SourceMode:     viper.GetString("source_mode"),
		BinDir:         viper.GetString("bin_dir"),
		WorkDir:        viper.GetString("work_dir"),
		Verbose:        viper.GetBool("verbose"),
	}
}

// ruleFiles returns the configured rule files. A plain string, as read from
// LATEXDEPS_RULES or a scalar config value, is a comma-separated list.
func ruleFiles() []string {
	if s, ok := viper.Get("rules").(string); ok {
		return splitList(s)
	}
	return viper.GetStringSlice("rules")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// defaultBinDir returns the bin directory next to the running executable.
func defaultBinDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "bin")
}

// loadTable builds the rule table: the built-in rules unless disabled,
// then each configured rule file in order.
func loadTable(cfg types.ResolveConfig) (*rules.Table, error) {
	mode, err := rules.ParseMode(cfg.SourceMode)
	if err != nil {
		return nil, err
	}

	sources := make([]rules.Source, 0, len(cfg.RuleFiles)+1)
	if !cfg.NoDefaultRules {
		sources = append(sources, rules.Default())
	}
	for _, f := range cfg.RuleFiles {
		sources = append(sources, rules.File(f))
	}
	return rules.Load(rules.LoadOptions{DefaultMode: mode}, sources...)
}

// reportDropped lists the sections excluded from the table.
func reportDropped(w io.Writer, t *rules.Table) {
	for _, d := range t.Dropped() {
		fmt.Fprintf(w, "rule %s ignored: %s\n", d.Name, d.Reason)
	}
}
