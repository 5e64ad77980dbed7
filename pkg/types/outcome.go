// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResolveStatus is the result of resolving one missing-file request.
type ResolveStatus string

const (
	// StatusConverted means a converter ran and exited successfully.
	StatusConverted ResolveStatus = "converted"
	// StatusUpToDate means a rule matched but the target is not older
	// than its source.
	StatusUpToDate ResolveStatus = "up-to-date"
	// StatusUnresolved means no rule yielded an existing source.
	StatusUnresolved ResolveStatus = "unresolved"
)

// Outcome describes how one request was handled.
type Outcome struct {
	// Request is the name as found in the log.
	Request string `json:"request" yaml:"request"`

	Status ResolveStatus `json:"status" yaml:"status"`

	// Rule, Source and Target are empty when Status is StatusUnresolved.
	Rule   string `json:"rule,omitempty" yaml:"rule,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Command is the argument list that ran, for StatusConverted.
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`
}

// Summary counts the outcomes of a run.
type Summary struct {
	Converted  int `json:"converted" yaml:"converted"`
	UpToDate   int `json:"up_to_date" yaml:"up_to_date"`
	Unresolved int `json:"unresolved" yaml:"unresolved"`
}

// Total returns the number of requests processed.
func (s Summary) Total() int {
	return s.Converted + s.UpToDate + s.Unresolved
}

// Add counts o.
func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case StatusConverted:
		s.Converted++
	case StatusUpToDate:
		s.UpToDate++
	case StatusUnresolved:
		s.Unresolved++
	}
}
