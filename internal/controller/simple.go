package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/schemata/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait returns immediately; SimpleUI never blocks.
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayMutants prints the mutants per file and per type.
func (s *SimpleUI) DisplayMutants(ctx context.Context, records []m.Record, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("listing error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderFileTable(buildFileStats(records), len(records)))
	s.printf("\n%s", renderTypeTable(countByType(records)))

	return nil
}

func renderFileTable(stats []fileStat, total int) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Mutants"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, stat := range stats {
		table.Append([]string{stat.path, strconv.Itoa(stat.count)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(stats)),
		strconv.Itoa(total),
	})

	table.Render()

	return buf.String()
}

func renderTypeTable(counts map[m.MutationType]int) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Type", "Mutants"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, t := range m.MutationTypes {
		if counts[t] == 0 {
			continue
		}

		table.Append([]string{string(t), strconv.Itoa(counts[t])})
	}

	table.Render()

	return buf.String()
}

// DisplayProgress prints one line per instrumented file.
func (s *SimpleUI) DisplayProgress(ctx context.Context, done, total int, path m.Path) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[%d/%d] %s\n", done, total, path)
}

// DisplayInjected prints a summary of the injection session.
func (s *SimpleUI) DisplayInjected(ctx context.Context, manifest m.Manifest) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Injected %d mutants into %d files of %s\n", len(manifest.Mutants), len(manifest.Files), manifest.Module)
	s.printf("Session:  %s\n", manifest.Session)
	s.printf("Overlay:  %s\n", manifest.Overlay)
	s.printf("Activate: %s=<ids> go test -overlay=%s ./...\n", manifest.EnvVar, manifest.Overlay)
}

// DisplayDiff prints the unified diff of one mutant.
func (s *SimpleUI) DisplayDiff(ctx context.Context, record m.Record, diff string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Mutant %d (%s) %s:%d:%d %s\n", record.ID, record.Type, record.File, record.Line, record.Column, record.Description)
	s.printf("%s\n", diff)
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
