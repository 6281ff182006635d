package controller

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type progressMsg struct {
	done  int
	total int
	path  string
}

type injectedMsg struct {
	summary string
}

// injectModel shows a spinner and a progress bar while files are written.
type injectModel struct {
	spinner  spinner.Model
	progress progress.Model
	done     int
	total    int
	current  string
	summary  string
	finished bool
}

func newInjectModel(width int) injectModel {
	return injectModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("6"))),
		),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		),
	}
}

func (im injectModel) Init() tea.Cmd {
	return im.spinner.Tick
}

func (im injectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return im, tea.Quit
		}

		return im, nil
	case spinner.TickMsg:
		if im.finished {
			return im, nil
		}

		var cmd tea.Cmd
		im.spinner, cmd = im.spinner.Update(msg)

		return im, cmd
	case progressMsg:
		im.done, im.total, im.current = msg.done, msg.total, msg.path
		return im, nil
	case injectedMsg:
		im.finished = true
		im.summary = msg.summary

		return im, tea.Quit
	}

	return im, nil
}

func (im injectModel) percent() float64 {
	if im.total <= 0 {
		return 0
	}

	return float64(im.done) / float64(im.total)
}

func (im injectModel) View() string {
	if im.finished {
		return im.summary
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s Instrumenting %s %d/%d\n", im.spinner.View(), im.progress.ViewAs(im.percent()), im.done, im.total)

	if im.current != "" {
		b.WriteString("  " + pathStyle.Render(im.current) + "\n")
	}

	return b.String()
}
