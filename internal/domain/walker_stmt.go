package domain

import (
	"go/ast"
	"go/token"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
	m "gooze.dev/pkg/schemata/internal/model"
)

// stmt rewrites s found in the given role. Statement-shaped mutants of s
// are registered before its children so they get the lower ids.
func (w *walker) stmt(s ast.Stmt, role mutagens.Role) (ast.Stmt, []m.Mutant) {
	if s == nil {
		return nil, nil
	}

	var cands []candidate
	if role == mutagens.RoleStatement {
		cands = w.candidates(s, role, m.ShapeStatement)
	}

	out, muts := w.stmtChildren(s)
	if len(cands) == 0 {
		return out, muts
	}

	// Both branches keep the rewritten children.
	for i := range cands {
		cands[i].replacement = retarget(cands[i].mutant.Replacement, out)
	}

	return w.fold(out, cands).(ast.Stmt), append(mutantsOf(cands), muts...)
}

// retarget applies the operator of replacement to rewritten.
func retarget(replacement ast.Node, rewritten ast.Stmt) ast.Node {
	switch r := replacement.(type) {
	case *ast.AssignStmt:
		if n, ok := rewritten.(*ast.AssignStmt); ok {
			c := *n
			c.Tok = r.Tok

			return &c
		}
	case *ast.IncDecStmt:
		if n, ok := rewritten.(*ast.IncDecStmt); ok {
			c := *n
			c.Tok = r.Tok

			return &c
		}
	}

	return replacement
}

func (w *walker) stmts(list []ast.Stmt) ([]ast.Stmt, []m.Mutant) {
	var (
		out  []ast.Stmt
		muts []m.Mutant
	)

	for i, s := range list {
		ns, sm := w.stmt(s, mutagens.RoleStatement)
		if ns != s && out == nil {
			out = make([]ast.Stmt, len(list))
			copy(out, list[:i])
		}

		if out != nil {
			out[i] = ns
		}

		muts = append(muts, sm...)
	}

	if out == nil {
		return list, muts
	}

	return out, muts
}

func (w *walker) block(b *ast.BlockStmt) (*ast.BlockStmt, []m.Mutant) {
	if b == nil {
		return nil, nil
	}

	list, muts := w.stmts(b.List)
	if sameStmts(list, b.List) {
		return b, muts
	}

	c := *b
	c.List = list

	return &c, muts
}

//nolint:cyclop,funlen // Statement kinds are dispatched in one place
func (w *walker) stmtChildren(s ast.Stmt) (ast.Stmt, []m.Mutant) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return w.block(n)
	case *ast.ExprStmt:
		x, muts := w.expr(n.X, mutagens.RoleValue)
		if x == n.X {
			return s, muts
		}

		return &ast.ExprStmt{X: x}, muts
	case *ast.AssignStmt:
		return w.assign(n)
	case *ast.IncDecStmt:
		x, muts := w.expr(n.X, mutagens.RoleAddressable)
		if x == n.X {
			return s, muts
		}

		c := *n
		c.X = x

		return &c, muts
	case *ast.DeclStmt:
		gd, ok := n.Decl.(*ast.GenDecl)
		if !ok {
			return s, nil
		}

		decl, muts := w.genDecl(gd)
		if decl == gd {
			return s, muts
		}

		return &ast.DeclStmt{Decl: decl}, muts
	case *ast.ReturnStmt:
		results, muts := w.exprs(n.Results, mutagens.RoleValue)
		if sameExprs(results, n.Results) {
			return s, muts
		}

		c := *n
		c.Results = results

		return &c, muts
	case *ast.IfStmt:
		return w.ifStmt(n)
	case *ast.ForStmt:
		return w.forStmt(n, true)
	case *ast.RangeStmt:
		return w.rangeStmt(n)
	case *ast.SwitchStmt:
		return w.switchStmt(n)
	case *ast.TypeSwitchStmt:
		init, mi := w.stmt(n.Init, mutagens.RoleInit)
		body, mb := w.clauses(n.Body, false)

		if init == n.Init && body == n.Body {
			return s, append(mi, mb...)
		}

		c := *n
		c.Init, c.Body = init, body

		return &c, append(mi, mb...)
	case *ast.SelectStmt:
		body, muts := w.clauses(n.Body, false)
		if body == n.Body {
			return s, muts
		}

		c := *n
		c.Body = body

		return &c, muts
	case *ast.LabeledStmt:
		var (
			inner ast.Stmt
			muts  []m.Mutant
		)

		// Duplicating a labeled loop would declare its label twice.
		if loop, ok := n.Stmt.(*ast.ForStmt); ok {
			inner, muts = w.forStmt(loop, false)
		} else {
			inner, muts = w.stmt(n.Stmt, mutagens.RoleStatement)
		}

		if inner == n.Stmt {
			return s, muts
		}

		c := *n
		c.Stmt = inner

		return &c, muts
	case *ast.GoStmt:
		call, muts := w.deferredCall(n.Call)
		if call == n.Call {
			return s, muts
		}

		c := *n
		c.Call = call

		return &c, muts
	case *ast.DeferStmt:
		call, muts := w.deferredCall(n.Call)
		if call == n.Call {
			return s, muts
		}

		c := *n
		c.Call = call

		return &c, muts
	case *ast.SendStmt:
		ch, mc := w.expr(n.Chan, mutagens.RoleValue)
		v, mv := w.expr(n.Value, mutagens.RoleValue)

		if ch == n.Chan && v == n.Value {
			return s, append(mc, mv...)
		}

		c := *n
		c.Chan, c.Value = ch, v

		return &c, append(mc, mv...)
	default:
		return s, nil
	}
}

func (w *walker) assign(n *ast.AssignStmt) (ast.Stmt, []m.Mutant) {
	lhs, muts := n.Lhs, []m.Mutant(nil)
	if n.Tok != token.DEFINE {
		lhs, muts = w.exprs(n.Lhs, mutagens.RoleAddressable)
	}

	rhs, mr := w.exprs(n.Rhs, mutagens.RoleValue)
	muts = append(muts, mr...)

	if sameExprs(lhs, n.Lhs) && sameExprs(rhs, n.Rhs) {
		return n, muts
	}

	c := *n
	c.Lhs, c.Rhs = lhs, rhs

	return &c, muts
}

// deferredCall rewrites the callee and arguments of a go or defer call.
// The call itself must stay a call evaluated by the statement.
func (w *walker) deferredCall(call *ast.CallExpr) (*ast.CallExpr, []m.Mutant) {
	if _, ok := w.filter.excluded(call, mutagens.RoleDeferred); ok {
		return call, nil
	}

	return w.call(call, mutagens.RoleValue)
}

func (w *walker) ifStmt(n *ast.IfStmt) (ast.Stmt, []m.Mutant) {
	init, muts := w.stmt(n.Init, mutagens.RoleInit)
	cond, mc := w.expr(n.Cond, mutagens.RoleValue)
	body, mb := w.block(n.Body)
	els, me := w.stmt(n.Else, mutagens.RoleInit)

	muts = append(muts, mc...)
	muts = append(muts, mb...)
	muts = append(muts, me...)

	if init == n.Init && cond == n.Cond && body == n.Body && els == n.Else {
		return n, muts
	}

	c := *n
	c.Init, c.Cond, c.Body, c.Else = init, cond, body, els

	return &c, muts
}

// forStmt rewrites a loop. A mutable post statement duplicates the whole
// loop: the mutated copy is the untouched loop with the post statement
// swapped, the original copy carries the mutants of the loop's children.
func (w *walker) forStmt(n *ast.ForStmt, duplicable bool) (ast.Stmt, []m.Mutant) {
	var cands []candidate
	if duplicable && n.Post != nil && !declaresLabels(n.Body) {
		cands = w.candidates(n.Post, mutagens.RoleLoopPost, m.ShapeStatement)
	}

	init, muts := w.stmt(n.Init, mutagens.RoleInit)
	cond, mc := w.expr(n.Cond, mutagens.RoleValue)
	post, mp := w.stmt(n.Post, mutagens.RoleLoopPost)
	body, mb := w.block(n.Body)

	muts = append(muts, mc...)
	muts = append(muts, mp...)
	muts = append(muts, mb...)

	var out ast.Stmt = n

	if init != n.Init || cond != n.Cond || post != n.Post || body != n.Body {
		c := *n
		c.Init, c.Cond, c.Post, c.Body = init, cond, post, body
		out = &c
	}

	if len(cands) == 0 {
		return out, muts
	}

	for i := range cands {
		mutated := *n
		mutated.Post = cands[i].mutant.Replacement.(ast.Stmt)
		cands[i].replacement = &mutated
	}

	return w.fold(out, cands).(ast.Stmt), append(mutantsOf(cands), muts...)
}

func (w *walker) rangeStmt(n *ast.RangeStmt) (ast.Stmt, []m.Mutant) {
	key, value := n.Key, n.Value

	var muts []m.Mutant

	if n.Tok != token.DEFINE {
		var mk, mv []m.Mutant

		key, mk = w.expr(n.Key, mutagens.RoleAddressable)
		value, mv = w.expr(n.Value, mutagens.RoleAddressable)
		muts = append(mk, mv...)
	}

	x, mx := w.expr(n.X, mutagens.RoleValue)
	body, mb := w.block(n.Body)

	muts = append(muts, mx...)
	muts = append(muts, mb...)

	if key == n.Key && value == n.Value && x == n.X && body == n.Body {
		return n, muts
	}

	c := *n
	c.Key, c.Value, c.X, c.Body = key, value, x, body

	return &c, muts
}

func (w *walker) switchStmt(n *ast.SwitchStmt) (ast.Stmt, []m.Mutant) {
	init, muts := w.stmt(n.Init, mutagens.RoleInit)
	tag, mt := w.expr(n.Tag, mutagens.RoleValue)
	body, mb := w.clauses(n.Body, true)

	muts = append(muts, mt...)
	muts = append(muts, mb...)

	if init == n.Init && tag == n.Tag && body == n.Body {
		return n, muts
	}

	c := *n
	c.Init, c.Tag, c.Body = init, tag, body

	return &c, muts
}

// clauses rewrites the case clauses of a switch or select body. Case
// expressions are rewritten only for expression switches.
func (w *walker) clauses(b *ast.BlockStmt, mutateCases bool) (*ast.BlockStmt, []m.Mutant) {
	var (
		list []ast.Stmt
		muts []m.Mutant
	)

	for i, s := range b.List {
		var ns ast.Stmt = s

		switch cl := s.(type) {
		case *ast.CaseClause:
			exprs := cl.List

			var me []m.Mutant
			if mutateCases {
				exprs, me = w.exprs(cl.List, mutagens.RoleValue)
			}

			body, mb := w.stmts(cl.Body)
			muts = append(muts, me...)
			muts = append(muts, mb...)

			if !sameExprs(exprs, cl.List) || !sameStmts(body, cl.Body) {
				c := *cl
				c.List, c.Body = exprs, body
				ns = &c
			}
		case *ast.CommClause:
			body, mb := w.stmts(cl.Body)
			muts = append(muts, mb...)

			if !sameStmts(body, cl.Body) {
				c := *cl
				c.Body = body
				ns = &c
			}
		}

		if ns != s && list == nil {
			list = make([]ast.Stmt, len(b.List))
			copy(list, b.List[:i])
		}

		if list != nil {
			list[i] = ns
		}
	}

	if list == nil {
		return b, muts
	}

	c := *b
	c.List = list

	return &c, muts
}

// declaresLabels reports whether body declares a label outside nested
// function literals.
func declaresLabels(body *ast.BlockStmt) bool {
	found := false

	ast.Inspect(body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.LabeledStmt:
			found = true
		}

		return !found
	})

	return found
}
