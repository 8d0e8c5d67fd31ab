package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List clinic requests",
	GroupID: "requests",
	Example: `  zd list --department Cardiology --sort name --order asc
  zd list --search karimova --limit 20 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(cmd, nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if err := ctrl.Refresh(cmd.Context()); err != nil {
			return err
		}
		v := ctrl.View()
		if jsonOutput {
			return printPageJSON(cmd.OutOrStdout(), v)
		}
		printPage(cmd.OutOrStdout(), v)
		return nil
	},
}

func init() {
	addQueryFlags(listCmd)
}
