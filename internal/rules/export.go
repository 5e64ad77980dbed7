// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ruleDoc is the YAML form of a loaded rule.
type ruleDoc struct {
	Name    string   `yaml:"name"`
	Target  string   `yaml:"target"`
	Source  string   `yaml:"source"`
	Mode    Mode     `yaml:"mode"`
	Command []string `yaml:"command"`
	Message string   `yaml:"message"`
}

type tableDoc struct {
	Rules   []ruleDoc `yaml:"rules"`
	Dropped []Dropped `yaml:"dropped,omitempty"`
}

// WriteYAML writes the table in evaluation order. When withDropped is set,
// sections excluded at load time are listed with the reason.
func (t *Table) WriteYAML(w io.Writer, withDropped bool) error {
	doc := tableDoc{Rules: make([]ruleDoc, 0, len(t.rules))}
	for _, r := range t.rules {
		cmd := make([]string, len(r.Command))
		for i, c := range r.Command {
			cmd[i] = c.String()
		}
		doc.Rules = append(doc.Rules, ruleDoc{
			Name:    r.Name,
			Target:  r.Pattern,
			Source:  r.Source,
			Mode:    r.Mode,
			Command: cmd,
			Message: r.Message.String(),
		})
	}
	if withDropped {
		doc.Dropped = t.dropped
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding rule table: %w", err)
	}
	return enc.Close()
}
