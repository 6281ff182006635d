package domain

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"slices"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
	m "gooze.dev/pkg/schemata/internal/model"
)

// DefaultRuntimeImport is the import path of the activation runtime.
const DefaultRuntimeImport = "gooze.dev/pkg/schemata/pkg/activation"

// runtimeAliasBase is the preferred local name of the runtime import.
const runtimeAliasBase = "schemata"

// ErrNilTree is returned when Mutate is given a tree without a file or
// file set.
var ErrNilTree = errors.New("tree has no file or file set")

// Orchestrator rewrites syntax trees into mutant schemata: every mutant
// is embedded behind a runtime activation check so that a single build
// carries all of them.
//
// An Orchestrator is single-writer. Mutant ids increase across every call
// on the same instance; processing files in parallel needs one instance per
// goroutine or external locking.
type Orchestrator interface {
	// Mutate returns a rewritten copy of tree.File. The input is not modified.
	Mutate(tree m.Tree) (*ast.File, error)
	// CurrentBatch returns the mutants produced by the latest Mutate call.
	CurrentBatch() []m.Mutant
}

// Option configures an Orchestrator.
type Option func(*orchestrator)

// WithRules replaces the rule set.
func WithRules(rules ...mutagens.Rule) Option {
	return func(o *orchestrator) {
		o.rules = rules
	}
}

// WithMutationTypes restricts the default rule set to the given types.
func WithMutationTypes(types ...m.MutationType) Option {
	return func(o *orchestrator) {
		o.rules = mutagens.Select(types...)
	}
}

// WithRuntimeImport sets the import path emitted for the activation runtime.
func WithRuntimeImport(path string) Option {
	return func(o *orchestrator) {
		o.runtimeImport = path
	}
}

type orchestrator struct {
	rules         []mutagens.Rule
	runtimeImport string
	reg           registry
	batch         []m.Mutant
}

// NewOrchestrator constructs an Orchestrator using the default rules.
func NewOrchestrator(opts ...Option) Orchestrator {
	o := &orchestrator{
		rules:         mutagens.Default(),
		runtimeImport: DefaultRuntimeImport,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *orchestrator) Mutate(tree m.Tree) (*ast.File, error) {
	if tree.File == nil || tree.Fset == nil {
		return nil, ErrNilTree
	}

	ctx := mutagens.NewContext(tree.Info, tree.Pkg)
	alias := chooseAlias(tree.File, tree.Pkg)

	w := &walker{
		ctx:      ctx,
		rules:    o.rules,
		reg:      &o.reg,
		fset:     tree.Fset,
		path:     tree.Path,
		filter:   exclusionFilter{ctx: ctx, ignore: buildIgnoreIndex(tree.File, tree.Fset)},
		speller:  newSpeller(ctx, tree.File),
		injector: injector{alias: alias},
		hazards:  evaluationHazards(tree.File, tree.Info),
	}

	decls, muts := w.decls(tree.File.Decls)
	if w.err != nil {
		o.batch = nil
		return nil, fmt.Errorf("failed to mutate %s: %w", tree.Path, w.err)
	}

	out := *tree.File
	o.batch = muts

	if len(muts) == 0 {
		return &out, nil
	}

	out.Decls = decls
	out.Comments = keepComments(tree.File, decls)
	cloneImports(&out)

	if !astutil.AddNamedImport(tree.Fset, &out, alias, o.runtimeImport) {
		return nil, fmt.Errorf("failed to import %s into %s", o.runtimeImport, tree.Path)
	}

	slog.Debug("Mutated file", "path", tree.Path, "mutants", len(muts), "alias", alias)

	return &out, nil
}

func (o *orchestrator) CurrentBatch() []m.Mutant {
	return slices.Clone(o.batch)
}

// chooseAlias returns a name for the runtime import that no identifier of
// file uses and that no declaration of pkg, which may be nil, occupies.
// Package-level names of sibling files share the file's import scope.
func chooseAlias(file *ast.File, pkg *types.Package) string {
	used := make(map[string]struct{})

	ast.Inspect(file, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			used[id.Name] = struct{}{}
		}

		return true
	})

	for _, spec := range file.Imports {
		if spec.Name != nil {
			used[spec.Name.Name] = struct{}{}
		}

		if path, err := strconv.Unquote(spec.Path.Value); err == nil {
			used[lastElem(path)] = struct{}{}
		}
	}

	taken := func(name string) bool {
		if _, ok := used[name]; ok {
			return true
		}

		return pkg != nil && pkg.Scope().Lookup(name) != nil
	}

	alias := runtimeAliasBase
	for i := 2; ; i++ {
		if !taken(alias) {
			return alias
		}

		alias = runtimeAliasBase + strconv.Itoa(i)
	}
}

func lastElem(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}

	return path
}

// keepComments drops the comment groups inside rewritten declarations. The
// printer positions comments by offset and new nodes have none.
func keepComments(file *ast.File, decls []ast.Decl) []*ast.CommentGroup {
	type span struct{ from, to token.Pos }

	var changed []span

	for i, d := range decls {
		if d != file.Decls[i] {
			changed = append(changed, span{file.Decls[i].Pos(), file.Decls[i].End()})
		}
	}

	kept := make([]*ast.CommentGroup, 0, len(file.Comments))

	for _, group := range file.Comments {
		inside := false

		for _, s := range changed {
			if group.Pos() >= s.from && group.End() <= s.to {
				inside = true
				break
			}
		}

		if !inside {
			kept = append(kept, group)
		}
	}

	return kept
}

// cloneImports copies the import declarations of file so that adding an
// import cannot reach the caller's tree.
func cloneImports(file *ast.File) {
	decls := make([]ast.Decl, len(file.Decls))
	imports := make([]*ast.ImportSpec, 0, len(file.Imports))

	for i, d := range file.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			decls[i] = d
			continue
		}

		c := *gd
		c.Specs = make([]ast.Spec, len(gd.Specs))

		for j, s := range gd.Specs {
			spec := *s.(*ast.ImportSpec)
			path := *spec.Path
			spec.Path = &path

			if spec.Name != nil {
				name := *spec.Name
				spec.Name = &name
			}

			c.Specs[j] = &spec
			imports = append(imports, &spec)
		}

		decls[i] = &c
	}

	file.Decls = decls
	file.Imports = imports
}

// RuntimeAlias returns the local name under which file imports path, or
// "" when it does not.
func RuntimeAlias(file *ast.File, path string) string {
	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != path {
			continue
		}

		if spec.Name != nil {
			return spec.Name.Name
		}

		return lastElem(path)
	}

	return ""
}
