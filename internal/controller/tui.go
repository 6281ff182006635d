package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "gooze.dev/pkg/schemata/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Width(6).Align(lipgloss.Right)
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Width(12)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

const (
	defaultProgressWidth = 40
	maxProgressWidth     = 80
)

// progressWidth sizes the progress bar to half the terminal behind w.
func progressWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultProgressWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultProgressWidth
	}

	return min(max(width/2, 10), maxProgressWidth)
}

// TUI implements UI using Bubble Tea for the injection progress and
// lipgloss for static output.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program in injection mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	if cfg.mode != ModeInject {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(newInjectModel(progressWidth(t.output)), tea.WithOutput(t.output), tea.WithInput(nil))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Error("progress display failed", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the progress program, if any, and waits for it to exit.
func (t *TUI) Close(_ context.Context) {
	program, done := t.running()
	if program == nil {
		return
	}

	program.Quit()
	<-done

	t.mu.Lock()
	t.program, t.done = nil, nil
	t.mu.Unlock()
}

// Wait blocks until the progress program exits.
func (t *TUI) Wait(ctx context.Context) {
	_, done := t.running()
	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (t *TUI) running() (*tea.Program, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program, t.done
}

func (t *TUI) send(msg tea.Msg) bool {
	program, _ := t.running()
	if program == nil {
		return false
	}

	program.Send(msg)

	return true
}

// DisplayMutants renders the mutants per file and per type.
func (t *TUI) DisplayMutants(ctx context.Context, records []m.Record, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		_, _ = fmt.Fprintf(t.output, "%s %v\n", removedStyle.Render("listing error:"), err)
		return err
	}

	_, err = fmt.Fprint(t.output, renderMutants(records))

	return err
}

func renderMutants(records []m.Record) string {
	var b strings.Builder

	stats := buildFileStats(records)

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d mutants in %d files", len(records), len(stats))))
	b.WriteString("\n\n")

	for _, stat := range stats {
		fmt.Fprintf(&b, "%s  %s\n", countStyle.Render(fmt.Sprintf("%d", stat.count)), pathStyle.Render(stat.path))
	}

	b.WriteString("\n")

	counts := countByType(records)
	for _, typ := range m.MutationTypes {
		if counts[typ] == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s%s\n", typeStyle.Render(string(typ)), countStyle.Render(fmt.Sprintf("%d", counts[typ])))
	}

	return b.String()
}

// DisplayProgress advances the progress bar.
func (t *TUI) DisplayProgress(ctx context.Context, done, total int, path m.Path) {
	if ctx.Err() != nil {
		return
	}

	t.send(progressMsg{done: done, total: total, path: string(path)})
}

// DisplayInjected shows the session summary and ends the progress display.
func (t *TUI) DisplayInjected(ctx context.Context, manifest m.Manifest) {
	if ctx.Err() != nil {
		return
	}

	summary := renderSummary(manifest)
	if t.send(injectedMsg{summary: summary}) {
		return
	}

	_, _ = fmt.Fprint(t.output, summary)
}

func renderSummary(manifest m.Manifest) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Injected %d mutants into %d files", len(manifest.Mutants), len(manifest.Files))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", faintStyle.Render("module: "), manifest.Module)
	fmt.Fprintf(&b, "%s %s\n", faintStyle.Render("session:"), manifest.Session)
	fmt.Fprintf(&b, "%s %s\n", faintStyle.Render("overlay:"), pathStyle.Render(string(manifest.Overlay)))
	fmt.Fprintf(&b, "\n  %s=<ids> go test -overlay=%s ./...\n", manifest.EnvVar, manifest.Overlay)

	return b.String()
}

// DisplayDiff renders the diff of one mutant with colored lines.
func (t *TUI) DisplayDiff(ctx context.Context, record m.Record, diff string) {
	if ctx.Err() != nil {
		return
	}

	_, _ = fmt.Fprint(t.output, renderDiff(record, diff))
}

func renderDiff(record m.Record, diff string) string {
	var b strings.Builder

	header := fmt.Sprintf("#%d %s  %s:%d:%d", record.ID, record.Type, record.File, record.Line, record.Column)
	b.WriteString(titleStyle.Render(header))

	if record.Description != "" {
		b.WriteString("  " + faintStyle.Render(record.Description))
	}

	b.WriteString("\n")

	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}

		text := strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			b.WriteString(faintStyle.Render(text))
		case strings.HasPrefix(text, "@@"):
			b.WriteString(hunkStyle.Render(text))
		case strings.HasPrefix(text, "+"):
			b.WriteString(addedStyle.Render(text))
		case strings.HasPrefix(text, "-"):
			b.WriteString(removedStyle.Render(text))
		default:
			b.WriteString(text)
		}

		b.WriteString("\n")
	}

	return b.String()
}
