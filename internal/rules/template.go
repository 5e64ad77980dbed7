// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"
	"strings"
)

// Template is a string with {name} placeholders. Doubled braces ({{ and })
// produce literal braces. Format specs and conversions ({name:spec},
// {name!r}) are not supported.
type Template struct {
	raw   string
	parts []part
}

type part struct {
	text  string
	field bool
}

// ParseTemplate parses s into a Template.
func ParseTemplate(s string) (*Template, error) {
	t := &Template{raw: s}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, part{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d in %q", ErrTemplate, i, s)
			}
			name := s[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("%w: empty placeholder at offset %d in %q", ErrTemplate, i, s)
			}
			if strings.ContainsAny(name, "{:!") {
				return nil, fmt.Errorf("%w: unsupported placeholder {%s} in %q", ErrTemplate, name, s)
			}
			flush()
			t.parts = append(t.parts, part{text: name, field: true})
			i += end + 1
		case c == '}':
			return nil, fmt.Errorf("%w: single '}' at offset %d in %q", ErrTemplate, i, s)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

// String returns the template source text.
func (t *Template) String() string { return t.raw }

// Fields returns the placeholder names in order of first use.
func (t *Template) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, p := range t.parts {
		if p.field && !seen[p.text] {
			seen[p.text] = true
			fields = append(fields, p.text)
		}
	}
	return fields
}

// Check returns an error naming the first placeholder not present in allowed.
func (t *Template) Check(allowed map[string]bool) error {
	for _, f := range t.Fields() {
		if !allowed[f] {
			return fmt.Errorf("%w: undefined key {%s} in %q", ErrTemplate, f, t.raw)
		}
	}
	return nil
}

// Execute fills the placeholders from vals. A placeholder missing from vals
// is an error.
func (t *Template) Execute(vals map[string]string) (string, error) {
	var b strings.Builder
	for _, p := range t.parts {
		if !p.field {
			b.WriteString(p.text)
			continue
		}
		v, ok := vals[p.text]
		if !ok {
			return "", fmt.Errorf("%w: no value for {%s} in %q", ErrTemplate, p.text, t.raw)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}
