// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner executes converter commands with a tool-local bin
// directory ahead of the inherited PATH.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrCommandFailed wraps every error returned by Exec.Run.
var ErrCommandFailed = errors.New("converter command failed")

// Runner runs one command to completion in dir.
type Runner interface {
	Run(dir string, argv []string) error
}

// executor abstracts process start for testing.
type executor interface {
	Run(cmd *exec.Cmd) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(cmd *exec.Cmd) error { return cmd.Run() }

// Exec runs commands as child processes. The environment of each child is
// built per call; the current process environment is never modified.
type Exec struct {
	binDir  string
	stdout  io.Writer
	stderr  io.Writer
	environ func() []string
	exec    executor
}

// New returns an Exec that prepends binDir to PATH for every command. An
// empty binDir leaves PATH unchanged. The child's output goes to stdout
// and stderr.
func New(binDir string, stdout, stderr io.Writer) *Exec {
	if binDir != "" {
		if abs, err := filepath.Abs(binDir); err == nil {
			binDir = abs
		}
	}
	return &Exec{
		binDir:  binDir,
		stdout:  stdout,
		stderr:  stderr,
		environ: os.Environ,
		exec:    osExecutor{},
	}
}

// BinDir returns the directory prepended to PATH.
func (e *Exec) BinDir() string { return e.binDir }

// Run executes argv in dir and waits for it to exit. The executable is
// looked up on the augmented PATH. A non-zero exit status is an error.
func (e *Exec) Run(dir string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty command", ErrCommandFailed)
	}

	env := Env(e.binDir, e.environ())
	name := argv[0]
	if p, ok := lookPath(name, pathValue(env)); ok {
		name = p
	}

	cmd := exec.Command(name, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := e.exec.Run(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s: exit status %d", ErrCommandFailed, strings.Join(argv, " "), exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, strings.Join(argv, " "), err)
	}
	return nil
}

// Env returns a copy of environ with binDir placed first on PATH. When
// environ has no PATH, or PATH is empty, the result's PATH is binDir alone.
func Env(binDir string, environ []string) []string {
	out := make([]string, 0, len(environ)+1)
	path := ""
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == "PATH" {
			path = v
			continue
		}
		out = append(out, kv)
	}
	switch {
	case binDir == "":
	case path == "":
		path = binDir
	default:
		path = binDir + string(os.PathListSeparator) + path
	}
	return append(out, "PATH="+path)
}

func pathValue(env []string) string {
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			return v
		}
	}
	return ""
}

// lookPath searches the directories of path for an executable named file.
// Names containing a separator are returned unchanged. Executability is
// judged by permission bits, so on Windows nothing is found and the caller
// falls back to exec's own lookup on the inherited PATH.
func lookPath(file, path string) (string, bool) {
	if strings.ContainsRune(file, filepath.Separator) || strings.ContainsRune(file, '/') {
		return file, false
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, file)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 != 0 {
			return p, true
		}
	}
	return "", false
}
