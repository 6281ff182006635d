package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List the mutants of a module",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := listArgs(args)
			if err != nil {
				return err
			}

			return workflow.List(cmd.Context(), selection)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
