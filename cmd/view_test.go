package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/schemata/internal/domain"
	m "gooze.dev/pkg/schemata/internal/model"
)

func TestViewCmd_UsesRootOutputFlagByDefault(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)
	cmd := newTestRoot(t, newViewCmd())

	mockWorkflow.On("View", mock.Anything, domain.ViewArgs{
		Manifest: m.Path(filepath.Join(domain.DefaultOutput, "mutants.yaml")),
		IDs:      []int{},
	}).Return(nil)

	require.NoError(t, execute(t, cmd, "view"))
}

func TestViewCmd_RootOutputFlagIsPassedThrough(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)
	cmd := newTestRoot(t, newViewCmd())

	mockWorkflow.On("View", mock.Anything, domain.ViewArgs{
		Manifest: m.Path(filepath.Join("reports-dir", "mutants.yaml")),
		IDs:      []int{3, 7},
	}).Return(nil)

	require.NoError(t, execute(t, cmd, "view", "3", "7", "--output", "./reports-dir"))
}

func TestViewCmd_ManifestFlagWins(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)
	cmd := newTestRoot(t, newViewCmd())

	mockWorkflow.On("View", mock.Anything, domain.ViewArgs{
		Manifest: m.Path("custom.yaml"),
		IDs:      []int{0},
	}).Return(nil)

	require.NoError(t, execute(t, cmd, "view", "-m", "custom.yaml", "-o", "ignored", "0"))
}

func TestViewCmd_InvalidIDsAreRejected(t *testing.T) {
	for _, arg := range []string{"abc", "-1", "1.5"} {
		t.Run(arg, func(t *testing.T) {
			mockWorkflow := useMockWorkflow(t)
			cmd := newTestRoot(t, newViewCmd())

			err := execute(t, cmd, "view", "--", arg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid mutant id")
			requireNoCalls(t, mockWorkflow)
		})
	}
}
