package domain

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/token"
	"log/slog"
	"strings"

	m "gooze.dev/pkg/schemata/internal/model"
)

// Records describes mutants for the manifest.
func Records(fset *token.FileSet, mutants []m.Mutant) []m.Record {
	records := make([]m.Record, 0, len(mutants))

	for _, mt := range mutants {
		records = append(records, m.Record{
			ID:          mt.ID,
			Type:        mt.Type,
			Shape:       mt.Shape,
			Description: mt.Description,
			File:        mt.Location.File,
			Line:        mt.Location.StartLine,
			Column:      mt.Location.StartColumn,
			EndLine:     mt.Location.EndLine,
			EndColumn:   mt.Location.EndColumn,
			Original:    nodeText(fset, mt.Site),
			Mutated:     nodeText(fset, mt.Replacement),
		})
	}

	return records
}

func nodeText(fset *token.FileSet, n ast.Node) string {
	if n == nil {
		return ""
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, n); err != nil {
		slog.Debug("Failed to print node", "error", err)
		return ""
	}

	return strings.TrimSpace(buf.String())
}
