package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/schemata/internal/domain"
	m "gooze.dev/pkg/schemata/internal/model"
)

var manifestFlag string

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [ids...]",
		Short: "Show the diff of injected mutants",
		Long: `Show the source change of mutants recorded in a manifest. Without ids every
mutant of the manifest is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			manifest := m.Path(manifestFlag)
			if manifest == "" {
				manifest = domain.ManifestPath(m.Path(viper.GetString(outputFlagName)))
			}

			return workflow.View(cmd.Context(), domain.ViewArgs{Manifest: manifest, IDs: ids})
		},
	}

	cmd.Flags().StringVarP(&manifestFlag, "manifest", "m", "", "manifest file (default: <output>/mutants.yaml)")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))

	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("invalid mutant id %q", arg)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
