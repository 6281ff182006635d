package domain

import (
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
	m "gooze.dev/pkg/schemata/internal/model"
)

// walker rewrites one file bottom-up. Every method returns the rewritten
// node together with the mutants registered beneath it, in id order; the
// input tree is never modified and unchanged sub-trees are shared.
type walker struct {
	ctx      *mutagens.Context
	rules    []mutagens.Rule
	reg      *registry
	fset     *token.FileSet
	path     m.Path
	filter   exclusionFilter
	speller  *speller
	injector injector
	// expressions whose variable reads must stay in place
	hazards map[ast.Expr]struct{}
	// directive of the enclosing function declaration
	fnRule ignoreRule
	// first injection failure
	err error
}

func (w *walker) decls(decls []ast.Decl) ([]ast.Decl, []m.Mutant) {
	var (
		out  []ast.Decl
		muts []m.Mutant
	)

	for i, d := range decls {
		nd, dm := w.decl(d)
		if nd != d && out == nil {
			out = make([]ast.Decl, len(decls))
			copy(out, decls[:i])
		}

		if out != nil {
			out[i] = nd
		}

		muts = append(muts, dm...)
	}

	if out == nil {
		return decls, muts
	}

	return out, muts
}

func (w *walker) decl(d ast.Decl) (ast.Decl, []m.Mutant) {
	if reason, ok := w.filter.excluded(d, mutagens.RoleStatement); ok {
		w.skip(d, reason)
		return d, nil
	}

	switch n := d.(type) {
	case *ast.FuncDecl:
		if n.Body == nil {
			return d, nil
		}

		w.fnRule = w.filter.ignore.funcByPos[n.Pos()]
		defer func() { w.fnRule = ignoreRule{} }()

		body, muts := w.block(n.Body)
		if body == n.Body {
			return d, muts
		}

		c := *n
		c.Body = body

		return &c, muts
	case *ast.GenDecl:
		return w.genDecl(n)
	default:
		return d, nil
	}
}

// genDecl rewrites the initialisers of a var declaration.
func (w *walker) genDecl(n *ast.GenDecl) (*ast.GenDecl, []m.Mutant) {
	if _, ok := w.filter.excluded(n, mutagens.RoleStatement); ok || n.Tok != token.VAR {
		return n, nil
	}

	var (
		specs []ast.Spec
		muts  []m.Mutant
	)

	for i, s := range n.Specs {
		vs, ok := s.(*ast.ValueSpec)
		if !ok {
			continue
		}

		values, vm := w.exprs(vs.Values, mutagens.RoleValue)
		muts = append(muts, vm...)

		if sameExprs(values, vs.Values) {
			continue
		}

		if specs == nil {
			specs = make([]ast.Spec, len(n.Specs))
			copy(specs, n.Specs)
		}

		c := *vs
		c.Values = values
		specs[i] = &c
	}

	if specs == nil {
		return n, muts
	}

	c := *n
	c.Specs = specs

	return &c, muts
}

// candidates registers every applicable rule of the given shape for n.
func (w *walker) candidates(n ast.Node, role mutagens.Role, shape m.Shape) []candidate {
	var (
		out     []candidate
		typ     ast.Expr
		spelled bool
	)

	for _, rule := range w.rules {
		if rule.Shape() != shape || !rule.Accepts(n, role) {
			continue
		}

		if w.filter.ignore.suppressed(w.fnRule, w.fset, n.Pos(), rule.Type()) {
			w.skip(n, ExcludedDirective)
			continue
		}

		proposal, ok := rule.Mutate(n, w.ctx)
		if !ok {
			continue
		}

		if shape == m.ShapeExpression {
			if !spelled {
				spelled = true
				typ = w.resultType(n.(ast.Expr))
			}

			if typ == nil {
				slog.Debug("Skipping mutation site", "path", w.path, "pos", w.fset.Position(n.Pos()), "reason", "result type cannot be written")
				return out
			}
		}

		mutant := w.reg.newMutant(w.fset, w.path, n, proposal.Replacement, rule.Type(), shape, proposal.Description)
		out = append(out, candidate{mutant: mutant, typ: typ})
	}

	return out
}

// resultType spells the type of e, or returns nil when e cannot be moved
// into a closure.
func (w *walker) resultType(e ast.Expr) ast.Expr {
	if w.callsRecover(e) {
		return nil
	}

	typ, ok := w.speller.spell(e)
	if !ok {
		return nil
	}

	return typ
}

// fold injects candidates around rewritten, innermost first.
func (w *walker) fold(rewritten ast.Node, cands []candidate) ast.Node {
	out := rewritten

	for _, c := range cands {
		node, err := w.injector.inject(out, c)
		if err != nil {
			if w.err == nil {
				w.err = err
			}

			slog.Error("Failed to inject mutant", "path", w.path, "id", c.mutant.ID, "error", err)

			return rewritten
		}

		out = node
	}

	return out
}

func mutantsOf(cands []candidate) []m.Mutant {
	muts := make([]m.Mutant, 0, len(cands))
	for _, c := range cands {
		muts = append(muts, c.mutant)
	}

	return muts
}

// callsRecover reports whether e calls the recover builtin outside a
// function literal. Such calls stop working when moved into a closure.
func (w *walker) callsRecover(e ast.Expr) bool {
	if !w.ctx.Typed() {
		return false
	}

	found := false

	ast.Inspect(e, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.CallExpr:
			if id, ok := ast.Unparen(n.Fun).(*ast.Ident); ok && id.Name == "recover" {
				if b, ok := w.ctx.Info.Uses[id].(*types.Builtin); ok && b.Name() == "recover" {
					found = true
				}
			}
		}

		return !found
	})

	return found
}

func (w *walker) skip(n ast.Node, reason Exclusion) {
	if reason == ExcludedTypeExpr || reason == ExcludedImport || reason == ExcludedConstantContext {
		return
	}

	slog.Debug("Excluded from mutation", "path", w.path, "pos", w.fset.Position(n.Pos()), "reason", reason)
}

func sameExprs(a, b []ast.Expr) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func sameStmts(a, b []ast.Stmt) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
