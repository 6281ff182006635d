package domain

import (
	"go/ast"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
)

const spellFixture = `package p

import bb "bytes"

type celsius float64

func plain(a, b int) int { return a + b }

func imported(buf *bb.Buffer) *bb.Buffer { return buf }

func named(c celsius) celsius { return c * 2 }

func generic[T ~int](v T) T { return v + 1 }

func untyped() float64 { return 1.5 + 2 }

func shadowed(a, b string) string {
	string := 1
	_ = string
	return a + b
}

func composite(m map[string][]int) map[string][]int { return m }

func null() *int { return nil }
`

// returnExpr finds the first result of the return statement in fn.
func returnExpr(t *testing.T, file *ast.File, fn string) ast.Expr {
	t.Helper()

	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Name.Name != fn {
			continue
		}

		ret := fd.Body.List[len(fd.Body.List)-1].(*ast.ReturnStmt)

		return ret.Results[0]
	}

	require.FailNow(t, "function not found", fn)

	return nil
}

func TestSpeller(t *testing.T) {
	tree := typedTree(t, spellFixture)
	ctx := mutagens.NewContext(tree.Info, tree.Pkg)
	s := newSpeller(ctx, tree.File)

	tests := []struct {
		fn   string
		want string
		ok   bool
	}{
		{"plain", "int", true},
		{"imported", "*bb.Buffer", true},
		{"named", "celsius", true},
		{"generic", "T", true},
		{"untyped", "float64", true},
		{"shadowed", "", false},
		{"composite", "map[string][]int", true},
		{"null", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			expr, ok := s.spell(returnExpr(t, tree.File, tt.fn))
			require.Equal(t, tt.ok, ok)

			if !tt.ok {
				return
			}

			assert.Equal(t, tt.want, types.ExprString(expr))
		})
	}
}

func TestSpellerWithoutTypes(t *testing.T) {
	tree := typedTree(t, spellFixture)
	ctx := mutagens.NewContext(nil, nil)
	s := newSpeller(ctx, tree.File)

	_, ok := s.spell(returnExpr(t, tree.File, "plain"))
	assert.False(t, ok)
}
