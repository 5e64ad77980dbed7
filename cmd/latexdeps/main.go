// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the latexdeps CLI.
//
// latexdeps reads a TeX build log, finds the files the compiler could not
// find, and runs the converter rule that can produce each one from an
// existing source file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd resolves the missing files of one build log.
var rootCmd = &cobra.Command{
	Use:   "latexdeps LOG [DOCUMENT]",
	Short: "Generate files a TeX run reported as missing",
	Long: `latexdeps scans a TeX build log for files the compiler could not find and
converts each one from an existing source using the first matching rule.

Built-in rules are read first; files given with --rules are read after them in
order and may override any key of a rule with the same name. A rule runs only
when its source exists and the target is missing or older than the source.`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         runResolve,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./latexdeps.yaml or ~/.config/latexdeps/latexdeps.yaml)")
	pf.StringArray("rules", nil, "additional rules file (repeatable, read after the built-in rules; LATEXDEPS_RULES takes a comma-separated list)")
	pf.Bool("no-default-rules", false, "do not load the built-in rules")
	pf.String("source-mode", "", "default source derivation for rules without a mode key: template or regexp")
	pf.BoolP("verbose", "v", false, "report dropped rules and unresolved files on stderr")

	f := rootCmd.Flags()
	f.String("suffix", "", "implicit extension tried after the bare name, without the dot (e.g. pdf)")
	f.String("bin-dir", "", "directory prepended to PATH for converters (default: bin next to the executable)")
	f.String("dir", "", "directory relative paths are resolved in and converters run from")

	bindFlags(map[string]string{
		"rules":            "rules",
		"no_default_rules": "no-default-rules",
		"source_mode":      "source-mode",
		"verbose":          "verbose",
	}, pf.Lookup)
	bindFlags(map[string]string{
		"suffix":   "suffix",
		"bin_dir":  "bin-dir",
		"work_dir": "dir",
	}, f.Lookup)

	viper.SetDefault("source_mode", "template")
	viper.SetDefault("bin_dir", defaultBinDir())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("latexdeps")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "latexdeps"))
		}
	}

	viper.SetEnvPrefix("LATEXDEPS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
