// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/latexdeps/internal/logscan"
	"github.com/pdiddy/latexdeps/internal/resolve"
	"github.com/pdiddy/latexdeps/internal/runner"
)

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig()
	stderr := cmd.ErrOrStderr()

	if len(args) == 2 {
		if _, err := os.Stat(args[1]); err != nil {
			return fmt.Errorf("document: %w", err)
		}
	}

	deps, err := logscan.ScanFile(args[0])
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		return nil
	}

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	run := runner.New(cfg.BinDir, cmd.OutOrStdout(), stderr)
	opts := []resolve.Option{
		resolve.WithOutput(cmd.OutOrStdout()),
		resolve.WithRunner(run),
	}
	if cfg.Verbose {
		reportDropped(stderr, table)
		if run.BinDir() != "" {
			fmt.Fprintf(stderr, "converters: %s first on PATH\n", run.BinDir())
		}
		opts = append(opts, resolve.WithLog(stderr))
	}

	sum, err := resolve.New(table, cfg, opts...).ResolveAll(deps)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Fprintf(stderr, "%d converted, %d up to date, %d unresolved (total: %d)\n",
			sum.Converted, sum.UpToDate, sum.Unresolved, sum.Total())
	}
	return nil
}
