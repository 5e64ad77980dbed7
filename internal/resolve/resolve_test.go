// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/latexdeps/internal/rules"
	"github.com/pdiddy/latexdeps/internal/runner"
	"github.com/pdiddy/latexdeps/pkg/types"
)

// fakeRunner records commands. When produce is set it writes the last
// argument as a file, like a converter creating its target.
type fakeRunner struct {
	calls   [][]string
	dirs    []string
	produce bool
	err     error
}

func (f *fakeRunner) Run(dir string, argv []string) error {
	f.calls = append(f.calls, argv)
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return f.err
	}
	if f.produce {
		return os.WriteFile(filepath.Join(dir, argv[len(argv)-1]), []byte("out"), 0o644)
	}
	return nil
}

const pngRule = `
[png]
target = (?P<n>.+)\.png
source = {n}.svg
command = ["convert", "{source}", "{target}"]
`

func newTable(t *testing.T, ini string) *rules.Table {
	t.Helper()
	tbl, err := rules.Load(rules.LoadOptions{}, rules.Bytes("test", []byte(ini)))
	require.NoError(t, err)
	return tbl
}

// touch creates name in dir with the given modification time offset from now.
func touch(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
	mt := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, mt, mt))
}

func newResolver(t *testing.T, ini string, cfg types.ResolveConfig) (*Resolver, *fakeRunner, *bytes.Buffer) {
	t.Helper()
	fr := &fakeRunner{}
	var out bytes.Buffer
	return New(newTable(t, ini), cfg, WithRunner(fr), WithOutput(&out)), fr, &out
}

func TestResolveConvertsMissingTarget(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "diagram.svg", time.Hour)

	r, fr, out := newResolver(t, pngRule, types.ResolveConfig{WorkDir: dir})
	got, err := r.Resolve("diagram.png")
	require.NoError(t, err)

	assert.Equal(t, types.Outcome{
		Request: "diagram.png",
		Status:  types.StatusConverted,
		Rule:    "png",
		Source:  "diagram.svg",
		Target:  "diagram.png",
		Command: []string{"convert", "diagram.svg", "diagram.png"},
	}, got)
	assert.Equal(t, [][]string{{"convert", "diagram.svg", "diagram.png"}}, fr.calls)
	assert.Equal(t, []string{dir}, fr.dirs)
	assert.Equal(t, "Converting diagram.svg to diagram.png [png]\n", out.String())
}

func TestResolveStaleness(t *testing.T) {
	tests := []struct {
		name       string
		sourceAge  time.Duration
		targetAge  time.Duration
		wantStatus types.ResolveStatus
	}{
		{name: "target newer than source", sourceAge: 2 * time.Hour, targetAge: time.Hour, wantStatus: types.StatusUpToDate},
		{name: "target same age as source", sourceAge: time.Hour, targetAge: time.Hour, wantStatus: types.StatusUpToDate},
		{name: "target older than source", sourceAge: time.Hour, targetAge: 2 * time.Hour, wantStatus: types.StatusConverted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "diagram.svg", tt.sourceAge)
			touch(t, dir, "diagram.png", tt.targetAge)
			mt := time.Now().Add(-tt.sourceAge).Truncate(time.Second)
			if tt.sourceAge == tt.targetAge {
				require.NoError(t, os.Chtimes(filepath.Join(dir, "diagram.svg"), mt, mt))
				require.NoError(t, os.Chtimes(filepath.Join(dir, "diagram.png"), mt, mt))
			}

			r, fr, out := newResolver(t, pngRule, types.ResolveConfig{WorkDir: dir})
			got, err := r.Resolve("diagram.png")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, "png", got.Rule)

			if tt.wantStatus == types.StatusUpToDate {
				assert.Empty(t, fr.calls)
				assert.Empty(t, out.String())
			} else {
				assert.Len(t, fr.calls, 1)
			}
		})
	}
}

func TestResolveFallsBackWhenSourceMissing(t *testing.T) {
	ini := `
[from-eps]
target = (?P<n>.+)\.pdf
source = {n}.eps
command = ["epstopdf", "{source}"]

[from-svg]
target = (?P<n>.+)\.pdf
source = {n}.svg
command = ["inkscape", "{source}", "{target}"]
`
	dir := t.TempDir()
	touch(t, dir, "plot.svg", time.Hour)

	r, fr, out := newResolver(t, ini, types.ResolveConfig{WorkDir: dir})
	got, err := r.Resolve("plot.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from-svg", got.Rule)
	assert.Equal(t, [][]string{{"inkscape", "plot.svg", "plot.pdf"}}, fr.calls)
	assert.Equal(t, "Converting plot.svg to plot.pdf [from-svg]\n", out.String())
}

func TestResolveFirstRuleWins(t *testing.T) {
	ini := `
[first]
target = (?P<n>.+)\.pdf
source = {n}.svg
command = ["first", "{source}"]

[second]
target = (?P<n>.+)\.pdf
source = {n}.svg
command = ["second", "{source}"]
`
	dir := t.TempDir()
	touch(t, dir, "plot.svg", time.Hour)

	r, fr, _ := newResolver(t, ini, types.ResolveConfig{WorkDir: dir})
	got, err := r.Resolve("plot.pdf")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Rule)
	assert.Equal(t, [][]string{{"first", "plot.svg"}}, fr.calls)
}

func TestResolveUpToDateDoesNotFallThrough(t *testing.T) {
	ini := `
[first]
target = (?P<n>.+)\.pdf
source = {n}.svg
command = ["first", "{source}"]

[second]
target = (?P<n>.+)\.pdf
source = {n}.eps
command = ["second", "{source}"]
`
	dir := t.TempDir()
	touch(t, dir, "plot.svg", 2*time.Hour)
	touch(t, dir, "plot.eps", 3*time.Hour)
	touch(t, dir, "plot.pdf", time.Hour)

	r, fr, _ := newResolver(t, ini, types.ResolveConfig{WorkDir: dir})
	got, err := r.Resolve("plot.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.StatusUpToDate, got.Status)
	assert.Equal(t, "first", got.Rule)
	assert.Empty(t, fr.calls)
}

func TestResolveUnresolved(t *testing.T) {
	dir := t.TempDir()
	var log bytes.Buffer
	fr := &fakeRunner{}
	r := New(newTable(t, pngRule), types.ResolveConfig{WorkDir: dir}, WithRunner(fr), WithOutput(&bytes.Buffer{}), WithLog(&log))

	for _, req := range []string{"diagram.png", "table.tex"} {
		got, err := r.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, types.Outcome{Request: req, Status: types.StatusUnresolved}, got)
	}
	assert.Empty(t, fr.calls)
	assert.Contains(t, log.String(), "diagram.png: rule png: no source diagram.svg")
	assert.Contains(t, log.String(), "table.tex: no rule applies")
}

func TestResolveEmptyTable(t *testing.T) {
	r, fr, _ := newResolver(t, "", types.ResolveConfig{WorkDir: t.TempDir()})
	got, err := r.Resolve("diagram.png")
	require.NoError(t, err)
	assert.Equal(t, types.StatusUnresolved, got.Status)
	assert.Empty(t, fr.calls)
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		suffix string
		want   []string
	}{
		{suffix: "", want: []string{"fig"}},
		{suffix: "pdf", want: []string{"fig", "fig.pdf"}},
		{suffix: ".pdf", want: []string{"fig", "fig.pdf"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("suffix %q", tt.suffix), func(t *testing.T) {
			r := New(newTable(t, ""), types.ResolveConfig{Suffix: tt.suffix}, WithRunner(&fakeRunner{}))
			assert.Equal(t, tt.want, r.Candidates("fig"))
		})
	}
}

func TestResolveWithSuffix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "diagram.svg", time.Hour)

	r, fr, _ := newResolver(t, pngRule, types.ResolveConfig{WorkDir: dir, Suffix: "png"})
	got, err := r.Resolve("diagram")
	require.NoError(t, err)
	assert.Equal(t, types.StatusConverted, got.Status)
	assert.Equal(t, "diagram.png", got.Target)
	assert.Equal(t, [][]string{{"convert", "diagram.svg", "diagram.png"}}, fr.calls)
}

func TestResolveBareNameTriedBeforeSuffix(t *testing.T) {
	ini := `
[any]
target = (?P<n>.+)
source = {n}.src
command = ["gen", "{target}"]
`
	dir := t.TempDir()
	touch(t, dir, "fig.src", time.Hour)
	touch(t, dir, "fig.pdf.src", time.Hour)

	r, fr, _ := newResolver(t, ini, types.ResolveConfig{WorkDir: dir, Suffix: "pdf"})
	got, err := r.Resolve("fig")
	require.NoError(t, err)
	assert.Equal(t, "fig", got.Target)
	assert.Equal(t, [][]string{{"gen", "fig"}}, fr.calls)
}

func TestResolveRegexpMode(t *testing.T) {
	ini := `
[nested]
target = (.+)/(.+)\.pdf
source = $1/src/$2.svg
command = ["inkscape", "{source}", "{target}"]
mode = regexp
`
	dir := t.TempDir()
	touch(t, dir, filepath.Join("fig", "src", "plot.svg"), time.Hour)

	r, fr, _ := newResolver(t, ini, types.ResolveConfig{WorkDir: dir})
	got, err := r.Resolve("fig/plot.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.StatusConverted, got.Status)
	assert.Equal(t, [][]string{{"inkscape", "fig/src/plot.svg", "fig/plot.pdf"}}, fr.calls)
}

func TestResolveCustomMessage(t *testing.T) {
	ini := `
[dot]
target = (?P<stem>.+)\.pdf
source = {stem}.dot
command = ["dot", "-Tpdf", "-o{target}", "{source}"]
message = Rendering graph {stem} from {source}
`
	dir := t.TempDir()
	touch(t, dir, "flow.dot", time.Hour)

	r, fr, out := newResolver(t, ini, types.ResolveConfig{WorkDir: dir})
	_, err := r.Resolve("flow.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Rendering graph flow from flow.dot [dot]\n", out.String())
	assert.Equal(t, [][]string{{"dot", "-Tpdf", "-oflow.pdf", "flow.dot"}}, fr.calls)
}

func TestResolveConverterFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.svg", time.Hour)
	touch(t, dir, "b.svg", time.Hour)

	fr := &fakeRunner{err: fmt.Errorf("%w: convert: exit status 1", runner.ErrCommandFailed)}
	r := New(newTable(t, pngRule), types.ResolveConfig{WorkDir: dir}, WithRunner(fr), WithOutput(&bytes.Buffer{}))

	sum, err := r.ResolveAll([]string{"missing.png", "a.png", "b.png"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, runner.ErrCommandFailed))
	assert.Contains(t, err.Error(), "rule png")
	assert.Len(t, fr.calls, 1, "run stops at the first failure")
	assert.Equal(t, types.Summary{Unresolved: 1}, sum)
}

func TestResolveAllIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "diagram.svg", time.Hour)

	fr := &fakeRunner{produce: true}
	r := New(newTable(t, pngRule), types.ResolveConfig{WorkDir: dir}, WithRunner(fr), WithOutput(&bytes.Buffer{}))

	sum, err := r.ResolveAll([]string{"diagram.png", "diagram.png", "diagram.png"})
	require.NoError(t, err)
	assert.Len(t, fr.calls, 1)
	assert.Equal(t, types.Summary{Converted: 1, UpToDate: 2}, sum)
	assert.Equal(t, 3, sum.Total())

	sum, err = r.ResolveAll([]string{"diagram.png"})
	require.NoError(t, err)
	assert.Len(t, fr.calls, 1)
	assert.Equal(t, types.Summary{UpToDate: 1}, sum)
}

func TestResolveAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "diagram.svg", time.Hour)
	target := filepath.Join(dir, "diagram.png")

	r, fr, _ := newResolver(t, pngRule, types.ResolveConfig{WorkDir: t.TempDir()})
	got, err := r.Resolve(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "diagram.svg"), got.Source)
	assert.Len(t, fr.calls, 1)
}
