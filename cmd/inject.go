package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/schemata/internal/domain"
	m "gooze.dev/pkg/schemata/internal/model"
)

var threadsFlag int
var watchFlag bool

// injectCmd represents the inject command.
var injectCmd = newInjectCmd()

func newInjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject [paths...]",
		Short: "Instrument a module with mutant schemata",
		Long:  injectLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := listArgs(args)
			if err != nil {
				return err
			}

			injectArgs := domain.InjectArgs{
				ListArgs: selection,
				Output:   m.Path(viper.GetString(outputFlagName)),
				Threads:  viper.GetInt(threadsConfigKey),
			}

			if !watchFlag {
				return workflow.Inject(cmd.Context(), injectArgs)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return workflow.Watch(ctx, injectArgs)
		},
	}

	configureInjectFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(injectCmd)
}

func configureInjectFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&threadsFlag, threadsFlagName, "p", viper.GetInt(threadsConfigKey), "number of files rendered in parallel (default: number of CPUs)")
	bindFlagToConfig(cmd.Flags().Lookup(threadsFlagName), threadsConfigKey)
	cmd.Flags().BoolVarP(&watchFlag, watchFlagName, "w", false, "re-inject whenever a source file changes")
}
