package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/schemata/internal/domain"
	domainmocks "gooze.dev/pkg/schemata/internal/domain/mocks"
)

// newTestRoot returns a root command with fresh configuration and the given
// subcommands.
func newTestRoot(t *testing.T, subcommands ...*cobra.Command) *cobra.Command {
	t.Helper()

	viper.Reset()
	setConfigDefaults()

	cmd := newRootCmd()
	cmd.AddCommand(subcommands...)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd
}

// useMockWorkflow swaps the package workflow for a mock until the test ends.
func useMockWorkflow(t *testing.T) *domainmocks.MockWorkflow {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	return mockWorkflow
}

// execute runs cmd with args, logging into a temporary file. The log flag
// follows the subcommand name.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()

	logFlag := []string{"--" + logFileFlagName, filepath.Join(t.TempDir(), "schemata.log")}
	if len(args) > 0 {
		logFlag = append([]string{args[0]}, logFlag...)
		args = args[1:]
	}

	cmd.SetArgs(append(logFlag, args...))

	return cmd.Execute()
}

var _ domain.Workflow = (*domainmocks.MockWorkflow)(nil)

func requireNoCalls(t *testing.T, mockWorkflow *domainmocks.MockWorkflow) {
	t.Helper()
	require.Empty(t, mockWorkflow.Calls)
}
