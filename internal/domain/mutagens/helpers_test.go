package mutagens

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testFset     = token.NewFileSet()
	testImporter = importer.ForCompiler(testFset, "source", nil)
)

// checkSource parses and type-checks src as a single-file package.
func checkSource(t *testing.T, src string) (*ast.File, *Context) {
	t.Helper()

	file, err := parser.ParseFile(testFset, "fixture.go", src, parser.ParseComments)
	require.NoError(t, err)

	info := &types.Info{
		Types:     make(map[ast.Expr]types.TypeAndValue),
		Defs:      make(map[*ast.Ident]types.Object),
		Uses:      make(map[*ast.Ident]types.Object),
		Implicits: make(map[ast.Node]types.Object),
		Scopes:    make(map[ast.Node]*types.Scope),
	}

	conf := types.Config{Importer: testImporter}
	pkg, err := conf.Check("fixture", testFset, []*ast.File{file}, info)
	require.NoError(t, err)

	return file, NewContext(info, pkg)
}

// find returns the first node in file for which match is true.
func find[T ast.Node](t *testing.T, file *ast.File, match func(T) bool) T {
	t.Helper()

	var found T

	ok := false

	ast.Inspect(file, func(n ast.Node) bool {
		if ok {
			return false
		}

		if v, is := n.(T); is && match(v) {
			found, ok = v, true
			return false
		}

		return true
	})

	require.True(t, ok, "node not found")

	return found
}

func render(t *testing.T, n ast.Node) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, format.Node(&buf, testFset, n))

	return buf.String()
}

func first[T ast.Node](T) bool { return true }
