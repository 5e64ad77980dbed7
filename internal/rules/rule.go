// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"
	"regexp"
	"strconv"
)

// Mode selects how a rule derives the source path from a matched target.
type Mode string

const (
	// ModeTemplate fills {name} placeholders from the named captures.
	ModeTemplate Mode = "template"
	// ModeRegexp expands $1, ${1}, $name and ${name} against the match,
	// with regular-expression replacement semantics.
	ModeRegexp Mode = "regexp"
)

// ParseMode converts s to a Mode. The empty string yields ModeTemplate.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTemplate:
		return ModeTemplate, nil
	case ModeRegexp:
		return ModeRegexp, nil
	}
	return "", fmt.Errorf("%w: %q (want %s or %s)", ErrMode, s, ModeTemplate, ModeRegexp)
}

// Reserved substitution keys. A target pattern may not define capture
// groups with these names.
const (
	KeySource = "source"
	KeyTarget = "target"
)

// DefaultMessage is used when a rule has no message key.
const DefaultMessage = "Converting {source} to {target}"

// Rule is one named conversion from a target pattern to a command.
type Rule struct {
	// Name is the rule's section name.
	Name string

	// Pattern is the target regular expression as written in the rule file.
	Pattern string

	// Source is the source-path template as written in the rule file.
	Source string

	// Mode is the source derivation mode.
	Mode Mode

	// Command holds one template per argument, executable first.
	Command []*Template

	// Message is the progress message template.
	Message *Template

	target *regexp.Regexp
	source *Template // set in ModeTemplate only
}

// Match is a successful match of a rule's target pattern.
type Match struct {
	// Target is the candidate string that matched.
	Target string

	// Groups maps each named capture to its text. Groups that did not
	// participate in the match map to the empty string.
	Groups map[string]string

	loc []int
}

// Match reports whether the target pattern matches candidate. The match
// must start at the first character of candidate but may stop before its end.
func (r *Rule) Match(candidate string) (Match, bool) {
	loc := r.target.FindStringSubmatchIndex(candidate)
	if loc == nil {
		return Match{}, false
	}
	groups := make(map[string]string)
	for i, name := range r.target.SubexpNames() {
		if name == "" {
			continue
		}
		if loc[2*i] >= 0 {
			groups[name] = candidate[loc[2*i]:loc[2*i+1]]
		} else {
			groups[name] = ""
		}
	}
	return Match{Target: candidate, Groups: groups, loc: loc}, true
}

// DeriveSource builds the source path for m.
func (r *Rule) DeriveSource(m Match) (string, error) {
	if r.Mode == ModeRegexp {
		return string(r.target.ExpandString(nil, r.Source, m.Target, m.loc)), nil
	}
	vals := make(map[string]string, len(m.Groups)+1)
	for k, v := range m.Groups {
		vals[k] = v
	}
	vals[KeyTarget] = m.Target
	return r.source.Execute(vals)
}

// Values returns the substitution keys for the message and command
// templates: every named capture plus source and target.
func (m Match) Values(source string) map[string]string {
	vals := make(map[string]string, len(m.Groups)+2)
	for k, v := range m.Groups {
		vals[k] = v
	}
	vals[KeySource] = source
	vals[KeyTarget] = m.Target
	return vals
}

// Argv fills every command template from vals.
func (r *Rule) Argv(vals map[string]string) ([]string, error) {
	argv := make([]string, len(r.Command))
	for i, t := range r.Command {
		arg, err := t.Execute(vals)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		argv[i] = arg
	}
	return argv, nil
}

// FormatMessage fills the message template from vals.
func (r *Rule) FormatMessage(vals map[string]string) (string, error) {
	msg, err := r.Message.Execute(vals)
	if err != nil {
		return "", fmt.Errorf("rule %s: %w", r.Name, err)
	}
	return msg, nil
}

// groupNames returns the set of named captures in re.
func groupNames(re *regexp.Regexp) map[string]bool {
	names := make(map[string]bool)
	for _, n := range re.SubexpNames() {
		if n != "" {
			names[n] = true
		}
	}
	return names
}

// checkExpandRefs verifies that every $name, ${name}, $N and ${N} reference
// in tmpl names a group of re. Malformed references are literal text, as in
// regexp.Expand.
func checkExpandRefs(re *regexp.Regexp, tmpl string) error {
	names := groupNames(re)
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '$' {
			continue
		}
		if i+1 < len(tmpl) && tmpl[i+1] == '$' {
			i++
			continue
		}
		name, n, ok := expandRef(tmpl[i+1:])
		if !ok {
			continue
		}
		i += n
		if num, err := strconv.Atoi(name); err == nil {
			if num > re.NumSubexp() {
				return fmt.Errorf("%w: group $%s not defined in %q", ErrTemplate, name, re.String())
			}
			continue
		}
		if !names[name] {
			return fmt.Errorf("%w: group ${%s} not defined in %q", ErrTemplate, name, re.String())
		}
	}
	return nil
}

// expandRef extracts the reference name following a '$' and the number of
// bytes it occupies.
func expandRef(s string) (name string, n int, ok bool) {
	if s == "" {
		return "", 0, false
	}
	brace := s[0] == '{'
	i := 0
	if brace {
		i = 1
	}
	start := i
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == start {
		return "", 0, false
	}
	name = s[start:i]
	if brace {
		if i >= len(s) || s[i] != '}' {
			return "", 0, false
		}
		i++
	}
	return name, i, true
}

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
