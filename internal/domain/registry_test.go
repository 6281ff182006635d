package domain

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/schemata/internal/model"
)

func TestRegistryNewMutant(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "reg.go", "package p\n\nvar x = 1 +\n\t2\n", 0)
	require.NoError(t, err)

	site := file.Decls[0].(*ast.GenDecl).Specs[0].(*ast.ValueSpec).Values[0]
	replacement := &ast.BinaryExpr{X: site.(*ast.BinaryExpr).X, Op: token.SUB, Y: site.(*ast.BinaryExpr).Y}

	var reg registry

	first := reg.newMutant(fset, "", site, replacement, m.MutationArithmetic, m.ShapeExpression, "+ -> -")
	second := reg.newMutant(fset, "custom.go", site, replacement, m.MutationArithmetic, m.ShapeExpression, "+ -> -")

	assert.Equal(t, 0, first.ID)
	assert.Equal(t, 1, second.ID)
	assert.Same(t, site, first.Site)
	assert.Equal(t, m.Span{File: "reg.go", StartLine: 3, StartColumn: 9, EndLine: 4, EndColumn: 3}, first.Location)
	assert.Equal(t, m.Path("custom.go"), second.Location.File)
	assert.Equal(t, "+ -> -", first.Description)
}
