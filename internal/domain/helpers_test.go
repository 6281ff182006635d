package domain

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/schemata/internal/model"
)

var (
	testFset     = token.NewFileSet()
	testImporter = runtimeImporter{base: importer.ForCompiler(testFset, "source", nil), runtime: fakeRuntime()}
)

// runtimeImporter resolves the activation runtime without building it.
type runtimeImporter struct {
	base    types.Importer
	runtime *types.Package
}

func (r runtimeImporter) Import(path string) (*types.Package, error) {
	if path == DefaultRuntimeImport {
		return r.runtime, nil
	}

	return r.base.Import(path)
}

func fakeRuntime() *types.Package {
	pkg := types.NewPackage(DefaultRuntimeImport, "activation")
	params := types.NewTuple(types.NewVar(token.NoPos, pkg, "id", types.Typ[types.Int]))
	results := types.NewTuple(types.NewVar(token.NoPos, pkg, "", types.Typ[types.Bool]))
	sig := types.NewSignatureType(nil, nil, nil, params, results, false)
	pkg.Scope().Insert(types.NewFunc(token.NoPos, pkg, activationFunc, sig))
	pkg.MarkComplete()

	return pkg
}

func newInfo() *types.Info {
	return &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
	}
}

// typedTree parses and type-checks src as the only file of package p.
func typedTree(t *testing.T, src string) m.Tree {
	t.Helper()

	file, err := parser.ParseFile(testFset, "fixture.go", src, parser.ParseComments)
	require.NoError(t, err)

	info := newInfo()
	conf := types.Config{Importer: testImporter}
	pkg, err := conf.Check("example.com/p", testFset, []*ast.File{file}, info)
	require.NoError(t, err)

	return m.Tree{Path: "fixture.go", Fset: testFset, File: file, Info: info, Pkg: pkg}
}

// typedPackage type-checks the named sources as one package and returns a
// tree for each file, in order.
func typedPackage(t *testing.T, names []string, srcs []string) []m.Tree {
	t.Helper()

	files := make([]*ast.File, 0, len(srcs))
	for i, src := range srcs {
		file, err := parser.ParseFile(testFset, names[i], src, parser.ParseComments)
		require.NoError(t, err)

		files = append(files, file)
	}

	info := newInfo()
	conf := types.Config{Importer: testImporter}
	pkg, err := conf.Check("example.com/p", testFset, files, info)
	require.NoError(t, err)

	trees := make([]m.Tree, 0, len(files))
	for i, file := range files {
		trees = append(trees, m.Tree{Path: m.Path(names[i]), Fset: testFset, File: file, Info: info, Pkg: pkg})
	}

	return trees
}

// requirePackageCompiles type-checks several sources as one package.
func requirePackageCompiles(t *testing.T, srcs ...string) {
	t.Helper()

	files := make([]*ast.File, 0, len(srcs))
	for i, src := range srcs {
		file, err := parser.ParseFile(testFset, fmt.Sprintf("file%d.go", i), src, 0)
		require.NoError(t, err, src)

		files = append(files, file)
	}

	conf := types.Config{Importer: testImporter}
	_, err := conf.Check("example.com/p", testFset, files, newInfo())
	require.NoError(t, err, srcs)
}

func render(t *testing.T, fset *token.FileSet, file *ast.File) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, format.Node(&buf, fset, file))

	return buf.String()
}

// requireCompiles type-checks instrumented source.
func requireCompiles(t *testing.T, src string) {
	t.Helper()

	file, err := parser.ParseFile(testFset, "instrumented.go", src, 0)
	require.NoError(t, err, src)

	conf := types.Config{Importer: testImporter}
	_, err = conf.Check("example.com/p", testFset, []*ast.File{file}, newInfo())
	require.NoError(t, err, src)
}

var astOptions = cmp.Options{
	cmpopts.IgnoreTypes(token.Pos(0), &ast.Object{}, &ast.Scope{}, &ast.CommentGroup{}),
	cmpopts.IgnoreFields(ast.File{}, "Unresolved", "Comments", "Imports"),
}

// requireSameAST asserts that two sources parse to the same tree, ignoring
// positions and comments.
func requireSameAST(t *testing.T, want, got string) {
	t.Helper()

	fset := token.NewFileSet()

	wantFile, err := parser.ParseFile(fset, "want.go", want, 0)
	require.NoError(t, err)

	gotFile, err := parser.ParseFile(fset, "got.go", got, 0)
	require.NoError(t, err, got)

	if diff := cmp.Diff(wantFile, gotFile, astOptions); diff != "" {
		t.Fatalf("trees differ (-want +got):\n%s\ngot source:\n%s", diff, got)
	}
}

// instrument mutates src and returns the printed result with the batch.
func instrument(t *testing.T, o Orchestrator, src string) (string, []m.Mutant) {
	t.Helper()

	tree := typedTree(t, src)

	out, err := o.Mutate(tree)
	require.NoError(t, err)

	return render(t, tree.Fset, out), o.CurrentBatch()
}

func materialize(t *testing.T, src string, active int) string {
	t.Helper()

	got, err := Materialize([]byte(src), runtimeAliasBase, DefaultRuntimeImport, active)
	require.NoError(t, err)

	return string(got)
}

func typesOf(muts []m.Mutant) []m.MutationType {
	out := make([]m.MutationType, 0, len(muts))
	for _, mt := range muts {
		out = append(out, mt.Type)
	}

	return out
}

func idsOf(muts []m.Mutant) []int {
	out := make([]int, 0, len(muts))
	for _, mt := range muts {
		out = append(out, mt.ID)
	}

	return out
}
