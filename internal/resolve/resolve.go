// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns missing-file requests into converter runs.
//
// For each request the resolver tries every rule in table order against
// the request name (and the name with the configured suffix). The first
// rule whose derived source file exists handles the request: it either
// runs the rule's command or, when the target is already at least as new
// as the source, does nothing. At most one command runs per request.
package resolve

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/latexdeps/internal/rules"
	"github.com/pdiddy/latexdeps/internal/runner"
	"github.com/pdiddy/latexdeps/pkg/types"
)

// Resolver matches requests against a rule table. It holds no state
// between requests.
type Resolver struct {
	table  *rules.Table
	suffix string
	dir    string
	runner runner.Runner
	out    io.Writer
	log    io.Writer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRunner sets the command runner. The default runs commands with
// cfg.BinDir ahead of PATH.
func WithRunner(r runner.Runner) Option {
	return func(res *Resolver) { res.runner = r }
}

// WithOutput sets where progress messages are written (default stdout).
func WithOutput(w io.Writer) Option {
	return func(res *Resolver) { res.out = w }
}

// WithLog sets where diagnostic notices are written. Notices are
// discarded by default.
func WithLog(w io.Writer) Option {
	return func(res *Resolver) { res.log = w }
}

// New returns a Resolver over table configured by cfg.
func New(table *rules.Table, cfg types.ResolveConfig, opts ...Option) *Resolver {
	r := &Resolver{
		table:  table,
		suffix: strings.TrimPrefix(cfg.Suffix, "."),
		dir:    cfg.WorkDir,
		out:    os.Stdout,
		log:    io.Discard,
	}
	for _, o := range opts {
		o(r)
	}
	if r.runner == nil {
		r.runner = runner.New(cfg.BinDir, os.Stdout, os.Stderr)
	}
	return r
}

// Candidates returns the target names tried for path: path itself, then
// path with the default suffix appended.
func (r *Resolver) Candidates(path string) []string {
	if r.suffix == "" {
		return []string{path}
	}
	return []string{path, path + "." + r.suffix}
}

// Resolve handles one request. A request no rule can satisfy yields
// StatusUnresolved and no error. An error means a converter failed and the
// run must stop.
func (r *Resolver) Resolve(path string) (types.Outcome, error) {
	candidates := r.Candidates(path)

	for _, rule := range r.table.Rules() {
		m, ok := matchFirst(rule, candidates)
		if !ok {
			continue
		}

		src, err := rule.DeriveSource(m)
		if err != nil {
			return types.Outcome{}, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		srcInfo, err := os.Stat(r.abs(src))
		if err != nil {
			fmt.Fprintf(r.log, "%s: rule %s: no source %s\n", path, rule.Name, src)
			continue
		}

		out := types.Outcome{
			Request: path,
			Rule:    rule.Name,
			Source:  src,
			Target:  m.Target,
		}

		if tgtInfo, err := os.Stat(r.abs(m.Target)); err == nil && !tgtInfo.ModTime().Before(srcInfo.ModTime()) {
			fmt.Fprintf(r.log, "%s: rule %s: %s is up to date\n", path, rule.Name, m.Target)
			out.Status = types.StatusUpToDate
			return out, nil
		}

		vals := m.Values(src)
		msg, err := rule.FormatMessage(vals)
		if err != nil {
			return out, err
		}
		argv, err := rule.Argv(vals)
		if err != nil {
			return out, err
		}

		fmt.Fprintf(r.out, "%s [%s]\n", msg, rule.Name)
		if err := r.runner.Run(r.dir, argv); err != nil {
			return out, fmt.Errorf("rule %s: %w", rule.Name, err)
		}

		out.Status = types.StatusConverted
		out.Command = argv
		return out, nil
	}

	fmt.Fprintf(r.log, "%s: no rule applies\n", path)
	return types.Outcome{Request: path, Status: types.StatusUnresolved}, nil
}

// ResolveAll resolves paths in order and stops at the first error. The
// summary covers the requests handled before the error.
func (r *Resolver) ResolveAll(paths []string) (types.Summary, error) {
	var sum types.Summary
	for _, p := range paths {
		o, err := r.Resolve(p)
		if err != nil {
			return sum, err
		}
		sum.Add(o)
	}
	return sum, nil
}

// matchFirst tries the candidates in order and returns the first match.
func matchFirst(rule *rules.Rule, candidates []string) (rules.Match, bool) {
	for _, c := range candidates {
		if m, ok := rule.Match(c); ok {
			return m, true
		}
	}
	return rules.Match{}, false
}

// abs resolves p against the working directory.
func (r *Resolver) abs(p string) string {
	if r.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.dir, p)
}
