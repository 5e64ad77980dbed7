// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the loaded rule table as YAML",
	Long: `Rules loads the built-in rules and any --rules files exactly as a resolve
run would and prints the resulting table in evaluation order. With --verbose
the sections that were ignored are listed with the reason.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig()
		table, err := loadTable(cfg)
		if err != nil {
			return err
		}
		return table.WriteYAML(cmd.OutOrStdout(), cfg.Verbose)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
