// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules loads conversion rules from INI files into an ordered table.
//
// Each section of a rule file is one rule. Recognised keys are target (a
// regular expression), source (a template for the source path), command (a
// JSON array of argument templates), message (optional progress template)
// and mode (optional, template or regexp). Sections keep the order in which
// they first appear across all loaded files; a later file overrides
// individual keys of a section with the same name.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-ini/ini"
)

// Source is one rule file to load.
type Source struct {
	// Name identifies the source in error messages. For file sources it
	// is the path.
	Name string

	data []byte
	file bool
}

// File returns a Source read from path at load time.
func File(path string) Source {
	return Source{Name: path, file: true}
}

// Bytes returns a Source holding data in memory.
func Bytes(name string, data []byte) Source {
	return Source{Name: name, data: data}
}

// LoadOptions controls how sections become rules.
type LoadOptions struct {
	// DefaultMode applies to rules without a mode key. Empty means
	// ModeTemplate.
	DefaultMode Mode
}

// Dropped records a section excluded from the table.
type Dropped struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

// Table is the ordered, read-only set of rules for one run.
type Table struct {
	rules   []*Rule
	byName  map[string]*Rule
	dropped []Dropped
}

// Rules returns the rules in evaluation order.
func (t *Table) Rules() []*Rule { return t.rules }

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.rules) }

// Lookup returns the rule with the given name.
func (t *Table) Lookup(name string) (*Rule, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Dropped returns the sections excluded at load time, in file order.
func (t *Table) Dropped() []Dropped { return t.dropped }

// iniOptions follows the behaviour of a Python-style INI reader: lower-case
// keys, literal values, indented continuation lines, no backslash
// continuations. Inline comments are not stripped since ';' may appear in a
// pattern or command.
var iniOptions = ini.LoadOptions{
	InsensitiveKeys:            true,
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	AllowPythonMultilineValues: true,
}

// Load reads sources in order and builds the rule table. A source that
// cannot be read or parsed, or a rule with an invalid pattern, command or
// template, fails the whole load.
func Load(opts LoadOptions, sources ...Source) (*Table, error) {
	defaultMode, err := ParseMode(string(opts.DefaultMode))
	if err != nil {
		return nil, err
	}

	f := ini.Empty(iniOptions)
	for _, src := range sources {
		data := src.data
		if src.file {
			data, err = os.ReadFile(src.Name)
			if err != nil {
				return nil, fmt.Errorf("reading rules %s: %w", src.Name, err)
			}
		}
		if err := f.Append(data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRuleFile, src.Name, err)
		}
	}

	t := &Table{byName: make(map[string]*Rule)}
	defaults := f.Section(ini.DefaultSection)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		keys := sectionKeys(sec, defaults)
		rule, reason, err := buildRule(sec.Name(), keys, defaultMode)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			t.dropped = append(t.dropped, Dropped{Name: sec.Name(), Reason: reason})
			continue
		}
		t.rules = append(t.rules, rule)
		t.byName[rule.Name] = rule
	}
	return t, nil
}

// sectionKeys returns the section's values with DEFAULT keys filled in
// where the section does not set them.
func sectionKeys(sec, defaults *ini.Section) map[string]string {
	keys := make(map[string]string)
	for _, k := range defaults.Keys() {
		keys[k.Name()] = keyValue(k)
	}
	for _, k := range sec.Keys() {
		keys[k.Name()] = keyValue(k)
	}
	return keys
}

// keyValue returns the interpolated value of k with "%%" reduced to "%".
func keyValue(k *ini.Key) string {
	return strings.ReplaceAll(k.String(), "%%", "%")
}

// buildRule turns one section into a Rule. A non-empty reason means the
// section is incomplete and must be skipped; err is fatal.
func buildRule(name string, keys map[string]string, defaultMode Mode) (*Rule, string, error) {
	source, ok := keys["source"]
	if !ok {
		return nil, "missing source", nil
	}
	pattern, ok := keys["target"]
	if !ok {
		return nil, "missing target", nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, "", fmt.Errorf("%w: rule %s: %v", ErrPattern, name, err)
	}
	groups := groupNames(re)
	for _, reserved := range []string{KeySource, KeyTarget} {
		if groups[reserved] {
			return nil, fmt.Sprintf("target pattern defines reserved group %q", reserved), nil
		}
	}
	rawCommand, ok := keys["command"]
	if !ok {
		return nil, "missing command", nil
	}

	mode := defaultMode
	if m, ok := keys["mode"]; ok {
		if mode, err = ParseMode(strings.TrimSpace(m)); err != nil {
			return nil, "", fmt.Errorf("rule %s: %w", name, err)
		}
	}

	r := &Rule{
		Name:    name,
		Pattern: pattern,
		Source:  source,
		Mode:    mode,
		target:  re,
	}

	// Keys available to the command and message templates.
	allowed := map[string]bool{KeySource: true, KeyTarget: true}
	for g := range groups {
		allowed[g] = true
	}

	switch mode {
	case ModeRegexp:
		if err := checkExpandRefs(re, source); err != nil {
			return nil, "", fmt.Errorf("rule %s: source: %w", name, err)
		}
	default:
		t, err := ParseTemplate(source)
		if err != nil {
			return nil, "", fmt.Errorf("rule %s: source: %w", name, err)
		}
		srcAllowed := map[string]bool{KeyTarget: true}
		for g := range groups {
			srcAllowed[g] = true
		}
		if err := t.Check(srcAllowed); err != nil {
			return nil, "", fmt.Errorf("rule %s: source: %w", name, err)
		}
		r.source = t
	}

	var args []string
	if err := json.Unmarshal([]byte(rawCommand), &args); err != nil {
		return nil, "", fmt.Errorf("%w: rule %s: %v", ErrCommand, name, err)
	}
	if len(args) == 0 {
		return nil, "", fmt.Errorf("%w: rule %s: empty command", ErrCommand, name)
	}
	for _, a := range args {
		t, err := ParseTemplate(a)
		if err != nil {
			return nil, "", fmt.Errorf("rule %s: command: %w", name, err)
		}
		if err := t.Check(allowed); err != nil {
			return nil, "", fmt.Errorf("rule %s: command: %w", name, err)
		}
		r.Command = append(r.Command, t)
	}

	message := DefaultMessage
	if m, ok := keys["message"]; ok {
		message = m
	}
	msg, err := ParseTemplate(message)
	if err != nil {
		return nil, "", fmt.Errorf("rule %s: message: %w", name, err)
	}
	if err := msg.Check(allowed); err != nil {
		return nil, "", fmt.Errorf("rule %s: message: %w", name, err)
	}
	r.Message = msg

	return r, "", nil
}
