// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResolveConfig holds the settings for one resolve run. Values come from
// flags, the config file and LATEXDEPS_* environment variables.
type ResolveConfig struct {
	// RuleFiles are read after the built-in rules, in order. A later file
	// overrides keys of same-named rules from earlier files.
	RuleFiles []string `json:"rules" yaml:"rules"`

	// NoDefaultRules skips the built-in rule file.
	NoDefaultRules bool `json:"no_default_rules" yaml:"no_default_rules"`

	// Suffix is the implicit extension, without a leading dot, tried after
	// the bare requested name (e.g. "pdf").
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`

	// SourceMode is the default source derivation mode for rules that do
	// not set one: "template" or "regexp".
	SourceMode string `json:"source_mode" yaml:"source_mode"`

	// BinDir is prepended to PATH for converter commands.
	BinDir string `json:"bin_dir" yaml:"bin_dir"`

	// WorkDir is the directory relative paths are resolved against and
	// converters run in. Empty means the current directory.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`

	// Verbose reports dropped rules and unresolved requests on stderr.
	Verbose bool `json:"verbose" yaml:"verbose"`
}
