package domain

import (
	"context"
	"go/ast"
	"go/parser"
	"go/types"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/schemata/internal/model"
	"gooze.dev/pkg/schemata/pkg/activation"
)

var exampleFixtures = []string{
	"boolean",
	"branch",
	"comparison",
	"constants",
	"logical",
	"loops",
	"ordering",
	"scopes",
	"statement",
	"types",
}

type exampleFile struct {
	name string
	tree m.Tree
	src  string
}

func exampleDir(name string) string {
	return filepath.Join("..", "..", "examples", name)
}

// exampleSources reads the non-test Go files of one fixture module.
func exampleSources(t *testing.T, name string) map[string]string {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(exampleDir(name), "*.go"))
	require.NoError(t, err)

	srcs := make(map[string]string, len(paths))
	for _, path := range paths {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}

		src, err := os.ReadFile(path)
		require.NoError(t, err)

		srcs[filepath.Base(path)] = string(src)
	}

	require.NotEmpty(t, srcs)

	return srcs
}

// exampleFiles type-checks a fixture package and returns its files sorted
// by name.
func exampleFiles(t *testing.T, name string) []exampleFile {
	t.Helper()

	srcs := exampleSources(t, name)

	var (
		files  []exampleFile
		syntax []*ast.File
	)

	for _, base := range sortedKeys(srcs) {
		path := filepath.Join(exampleDir(name), base)

		file, err := parser.ParseFile(testFset, path, srcs[base], parser.ParseComments)
		require.NoError(t, err)

		syntax = append(syntax, file)
		files = append(files, exampleFile{name: base, src: srcs[base], tree: m.Tree{Path: m.Path(path), Fset: testFset, File: file}})
	}

	info := newInfo()
	conf := types.Config{Importer: testImporter}
	pkg, err := conf.Check("example.com/"+name, testFset, syntax, info)
	require.NoError(t, err)

	for i := range files {
		files[i].tree.Info = info
		files[i].tree.Pkg = pkg
	}

	return files
}

func sortedKeys(srcs map[string]string) []string {
	keys := make([]string, 0, len(srcs))
	for k := range srcs {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

func TestExamplesIntegration(t *testing.T) {
	for _, name := range exampleFixtures {
		t.Run(name, func(t *testing.T) {
			files := exampleFiles(t, name)

			for i, f := range files {
				o := NewOrchestrator()

				out, err := o.Mutate(f.tree)
				require.NoError(t, err)

				batch := o.CurrentBatch()
				require.NotEmpty(t, batch, f.name)

				instrumented := render(t, f.tree.Fset, out)

				pkg := []string{instrumented}
				for j, other := range files {
					if j != i {
						pkg = append(pkg, other.src)
					}
				}

				requirePackageCompiles(t, pkg...)
				requireSameAST(t, f.src, materialize(t, instrumented, NoActiveMutant))

				want := make([]int, 0, len(batch))
				for id := range batch {
					want = append(want, id)
				}
				assert.ElementsMatch(t, want, idsOf(batch))

				original := materialize(t, instrumented, NoActiveMutant)
				for _, mt := range batch {
					assert.Contains(t, instrumented, "IsActive("+strconv.Itoa(mt.ID)+")")
					assert.NotEqual(t, original, materialize(t, instrumented, mt.ID), "mutant %d (%s) changes nothing", mt.ID, mt.Type)
				}
			}
		})
	}
}

// injectExample copies a fixture module into a temporary directory and
// injects it through the workflow.
func injectExample(t *testing.T, name string) (string, m.Manifest) {
	t.Helper()

	root := t.TempDir()

	gomod, err := os.ReadFile(filepath.Join(exampleDir(name), "go.mod"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), gomod, 0o600))

	pkg := loadModule(t, "example.com/"+name, root, exampleSources(t, name))
	wf := newTestWorkflow(&fakeLoader{pkgs: []m.Package{pkg}}, &recordingUI{}, nil)

	manifest, err := wf.runInject(context.Background(), InjectArgs{Output: m.Path(filepath.Join(t.TempDir(), "out"))})
	require.NoError(t, err)

	return root, manifest
}

// runExample runs the main package in dir and returns its combined output.
func runExample(t *testing.T, goBin, dir string, overlay m.Path, active string) string {
	t.Helper()

	args := []string{"run"}
	if overlay != "" {
		args = append(args, "-overlay="+string(overlay))
	}

	cmd := exec.Command(goBin, append(args, ".")...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=", "GOTOOLCHAIN=local", activation.EnvVar+"="+active)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	return string(out)
}

func requireGo(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("builds every example module")
	}

	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not found")
	}

	return goBin
}

func TestExamplesRunUnchangedWhenInactive(t *testing.T) {
	goBin := requireGo(t)

	for _, name := range exampleFixtures {
		t.Run(name, func(t *testing.T) {
			root, manifest := injectExample(t, name)
			require.NotEmpty(t, manifest.Mutants)

			want := runExample(t, goBin, root, "", "")
			got := runExample(t, goBin, root, manifest.Overlay, "")

			assert.Equal(t, want, got)
		})
	}
}

func TestOrderingExampleSwitchesMutants(t *testing.T) {
	goBin := requireGo(t)
	root, manifest := injectExample(t, "ordering")

	var scale, next *m.Record
	for i, r := range manifest.Mutants {
		if r.Type != m.MutationArithmetic {
			continue
		}

		switch r.Original {
		case "n * schemata":
			scale = &manifest.Mutants[i]
		case "(calls + 1) + bump()":
			next = &manifest.Mutants[i]
		}
	}

	require.NotNil(t, scale)
	require.NotNil(t, next)

	for _, r := range manifest.Mutants {
		assert.NotEqual(t, "calls + 1", r.Original, "operand read ahead of bump() was wrapped")
	}

	original := runExample(t, goBin, root, "", "")
	fields := strings.Fields(original)
	require.Len(t, fields, 2)

	scaled := strings.Fields(runExample(t, goBin, root, manifest.Overlay, strconv.Itoa(scale.ID)))
	require.Len(t, scaled, 2)
	assert.Equal(t, fields[0], scaled[0])
	assert.Equal(t, "1", scaled[1])

	// The mutant subtracts bump() instead of adding it and reads calls at
	// the same point as the original.
	sum, err := strconv.Atoi(fields[0])
	require.NoError(t, err)

	mutated := strings.Fields(runExample(t, goBin, root, manifest.Overlay, strconv.Itoa(next.ID)))
	require.Len(t, mutated, 2)
	assert.Equal(t, strconv.Itoa(sum-2), mutated[0])
}
