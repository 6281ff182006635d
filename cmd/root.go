// Package cmd provides the root command and CLI setup for schemata.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/schemata/internal/adapter"
	"gooze.dev/pkg/schemata/internal/controller"
	"gooze.dev/pkg/schemata/internal/domain"
	m "gooze.dev/pkg/schemata/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var packageLoader adapter.PackageLoader
var reportStore adapter.ReportStore
var watcher adapter.Watcher
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that read or write
// injection artefacts.
var outputDirFlag string

// excludePatterns is a root-level flag that filters files for every command.
var excludePatterns []string

// typesFlag restricts the mutation types.
var typesFlag []string

var logFileFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	packageLoader = adapter.NewPackageLoader()
	reportStore = adapter.NewReportStore()
	watcher = adapter.NewFSWatcher()
	workflow = domain.NewWorkflow(
		packageLoader,
		fsAdapter,
		reportStore,
		watcher,
		ui,
	)
}

const pathPatternsHelp = `Supports Go-style package patterns:
  - ./...          every package of the current module
  - ./pkg/...      every package below pkg
  - ./cmd ./pkg    several packages`

const rootLongDescription = `Schemata instruments a Go module with mutant schemata: every mutation is
compiled into a single build and guarded by a runtime switch, so mutants are
activated by id through the SCHEMATA_ACTIVE_MUTANTS environment variable
instead of being rebuilt one by one.

` + pathPatternsHelp

const listLongDescription = `List the mutants the given packages would receive (default: current module).

` + pathPatternsHelp

const injectLongDescription = `Write instrumented copies of the given packages together with a go build
overlay and a manifest of every mutant. Run the tests of the instrumented
module with:

  SCHEMATA_ACTIVE_MUTANTS=<ids> go test -overlay=<output>/overlay.json ./...

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemata",
		Short: "Go mutant schemata generator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a root command carrying the root flags but no
// subcommands.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for instrumented files, overlay and manifest",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringSliceVarP(&typesFlag, typesFlagName, "t", viper.GetStringSlice(typesConfigKey), "mutation types to apply (default: all)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(typesFlagName), typesConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default: "+defaultLogFilename+")")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

func parseTypes(names []string) ([]m.MutationType, error) {
	types := make([]m.MutationType, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		t, ok := m.ParseMutationType(name)
		if !ok {
			return nil, fmt.Errorf("unknown mutation type %q", name)
		}

		types = append(types, t)
	}

	return types, nil
}

func listArgs(args []string) (domain.ListArgs, error) {
	types, err := parseTypes(viper.GetStringSlice(typesConfigKey))
	if err != nil {
		return domain.ListArgs{}, err
	}

	return domain.ListArgs{
		Paths:   parsePaths(args),
		Exclude: viper.GetStringSlice(excludeConfigKey),
		Types:   types,
	}, nil
}
