package controller

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/schemata/internal/model"
)

func TestNewUI(t *testing.T) {
	cmd, _ := newTestCommand()

	_, ok := NewUI(cmd, true).(*TUI)
	assert.True(t, ok)

	_, ok = NewUI(cmd, false).(*SimpleUI)
	assert.True(t, ok)
}

func TestIsTTY_WithRegularFile(t *testing.T) {
	file, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	defer func() { _ = file.Close() }()

	assert.False(t, IsTTY(file))
}

func TestTUI_StaticOutput(t *testing.T) {
	var out bytes.Buffer

	ui := NewTUI(&out)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithListMode()))
	require.NoError(t, ui.DisplayMutants(ctx, sampleRecords(), nil))
	ui.DisplayDiff(ctx, sampleRecords()[1], "--- a/calc.go\n+++ b/calc.go\n@@ -1 +1 @@\n-i+8 == 8\n+i+8 != 8\n")
	ui.DisplayInjected(ctx, m.Manifest{Module: "example.com/calc", Overlay: "/out/overlay.json", EnvVar: "SCHEMATA_ACTIVE_MUTANTS"})
	ui.Wait(ctx)
	ui.Close(ctx)

	got := out.String()
	assert.Contains(t, got, "3 mutants in 2 files")
	assert.Contains(t, got, "loop/loop.go")
	assert.Contains(t, got, "#1 comparison")
	assert.Contains(t, got, "+i+8 != 8")
	assert.Contains(t, got, "example.com/calc")
}

func TestTUI_InjectProgram(t *testing.T) {
	var out bytes.Buffer

	ui := NewTUI(&out)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithInjectMode()))
	ui.DisplayProgress(ctx, 1, 1, "calc.go")
	ui.DisplayInjected(ctx, m.Manifest{Module: "example.com/calc", Session: "s-1"})
	ui.Wait(ctx)
	ui.Close(ctx)

	assert.Contains(t, out.String(), "Injected 0 mutants into 0 files")
}

func TestInjectModel(t *testing.T) {
	model := newInjectModel(defaultProgressWidth)
	assert.NotNil(t, model.Init())
	assert.InDelta(t, 0.0, model.percent(), 0.0001)

	next, cmd := model.Update(progressMsg{done: 1, total: 4, path: "calc.go"})
	assert.Nil(t, cmd)

	model = next.(injectModel)
	assert.InDelta(t, 0.25, model.percent(), 0.0001)
	assert.Contains(t, model.View(), "1/4")
	assert.Contains(t, model.View(), "calc.go")

	next, cmd = model.Update(model.spinner.Tick())
	assert.NotNil(t, cmd)

	model = next.(injectModel)

	next, cmd = model.Update(injectedMsg{summary: "all done\n"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	model = next.(injectModel)
	assert.Equal(t, "all done\n", model.View())

	_, cmd = model.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestInjectModel_CtrlC(t *testing.T) {
	_, cmd := newInjectModel(defaultProgressWidth).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestProgressWidth(t *testing.T) {
	assert.Equal(t, defaultProgressWidth, progressWidth(&bytes.Buffer{}))

	file, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	assert.Equal(t, defaultProgressWidth, progressWidth(file))
}
