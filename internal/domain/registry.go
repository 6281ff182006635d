package domain

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

// registry hands out mutant ids. Ids increase monotonically for the life
// of the registry and are never reused.
type registry struct {
	next int
}

func (r *registry) newMutant(
	fset *token.FileSet,
	path m.Path,
	site, replacement ast.Node,
	mutationType m.MutationType,
	shape m.Shape,
	description string,
) m.Mutant {
	id := r.next
	r.next++

	return m.Mutant{
		ID:          id,
		Type:        mutationType,
		Shape:       shape,
		Description: description,
		Site:        site,
		Replacement: replacement,
		Location:    spanOf(fset, path, site),
	}
}

func spanOf(fset *token.FileSet, path m.Path, n ast.Node) m.Span {
	start := fset.PositionFor(n.Pos(), false)
	end := fset.PositionFor(n.End(), false)

	if path == "" {
		path = m.Path(start.Filename)
	}

	return m.Span{
		File:        path,
		StartLine:   start.Line,
		StartColumn: start.Column,
		EndLine:     end.Line,
		EndColumn:   end.Column,
	}
}
