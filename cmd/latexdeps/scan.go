// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/latexdeps/internal/logscan"
)

var scanCmd = &cobra.Command{
	Use:   "scan LOG",
	Short: "List the missing files reported in a build log",
	Long: `Scan prints every file a TeX build log reports as missing, in log order,
one per line. Files reported more than once are listed each time.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("json", false, "output the list as a JSON array")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	deps, err := logscan.ScanFile(args[0])
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeScan(cmd.OutOrStdout(), deps, jsonOutput)
}

func writeScan(w io.Writer, deps []string, jsonOutput bool) error {
	if jsonOutput {
		if deps == nil {
			deps = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(deps)
	}
	for _, d := range deps {
		fmt.Fprintln(w, d)
	}
	return nil
}
