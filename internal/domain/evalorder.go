package domain

import (
	"go/ast"
	"go/token"
	"go/types"
)

// Builtins without side effects; calling them does not order operand reads.
var pureBuiltins = map[string]struct{}{
	"len":     {},
	"cap":     {},
	"min":     {},
	"max":     {},
	"real":    {},
	"imag":    {},
	"complex": {},
	"new":     {},
}

// evaluationHazards returns the expressions of file that must not move into
// a closure. Go orders calls, receives and logical operations lexically but
// leaves plain variable reads free, and the compiler reads them as late as
// it can. A closure call pins the reads of its body at the point of the
// call, so an expression that reads a variable ahead of a later call in the
// same statement could observe a different value once wrapped.
func evaluationHazards(file *ast.File, info *types.Info) map[ast.Expr]struct{} {
	if file == nil || info == nil {
		return nil
	}

	hazards := make(map[ast.Expr]struct{})

	ast.Inspect(file, func(n ast.Node) bool {
		switch n.(type) {
		case ast.Stmt, *ast.ValueSpec:
			u := orderUnit{info: info, roots: unitRoots(n)}
			u.mark(hazards)
		}

		return true
	})

	return hazards
}

// orderUnit is the set of expressions evaluated together by one statement
// or value spec.
type orderUnit struct {
	info     *types.Info
	roots    []ast.Expr
	events   []ast.Node
	logicals []*ast.BinaryExpr
}

// unitRoots returns the expressions n evaluates directly. Nested statements
// and function literals form units of their own.
func unitRoots(n ast.Node) []ast.Expr {
	var roots []ast.Expr

	ast.Inspect(n, func(c ast.Node) bool {
		switch c := c.(type) {
		case nil:
			return false
		case ast.Expr:
			roots = append(roots, c)
			return false
		case ast.Stmt:
			return c == n
		}

		return true
	})

	return roots
}

func (u *orderUnit) mark(hazards map[ast.Expr]struct{}) {
	for _, root := range u.roots {
		u.collect(root)
	}

	if len(u.events) == 0 {
		return
	}

	for _, root := range u.roots {
		ast.Inspect(root, func(n ast.Node) bool {
			e, ok := n.(ast.Expr)
			if !ok {
				return false
			}

			if _, lit := e.(*ast.FuncLit); lit {
				return false
			}

			if u.floating(e) && u.unordered(e) {
				hazards[e] = struct{}{}
			}

			return true
		})
	}
}

func (u *orderUnit) collect(root ast.Expr) {
	ast.Inspect(root, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.CallExpr:
			if u.ordered(n) {
				u.events = append(u.events, n)
			}
		case *ast.UnaryExpr:
			if n.Op == token.ARROW {
				u.events = append(u.events, n)
			}
		case *ast.BinaryExpr:
			if logical(n) {
				u.logicals = append(u.logicals, n)
			}
		}

		return true
	})
}

// ordered reports whether call is a real call: conversions, constant
// expressions and pure builtins do not take part in evaluation order.
func (u *orderUnit) ordered(call *ast.CallExpr) bool {
	if tv, ok := u.info.Types[call.Fun]; ok && tv.IsType() {
		return false
	}

	if tv, ok := u.info.Types[call]; ok && tv.Value != nil {
		return false
	}

	var id *ast.Ident

	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		id = fun
	case *ast.SelectorExpr:
		id = fun.Sel
	}

	if id != nil {
		if b, ok := u.info.Uses[id].(*types.Builtin); ok {
			_, pure := pureBuiltins[b.Name()]
			return !pure
		}
	}

	return true
}

// floating reports whether e reads a variable whose read is not pinned by a
// call, receive or logical operation inside e.
func (u *orderUnit) floating(e ast.Expr) bool {
	found := false

	ast.Inspect(e, func(n ast.Node) bool {
		if found {
			return false
		}

		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.CallExpr:
			return !u.ordered(n)
		case *ast.UnaryExpr:
			return n.Op != token.ARROW
		case *ast.BinaryExpr:
			return !logical(n)
		case *ast.SelectorExpr:
			if sel, ok := u.info.Selections[n]; ok && sel.Kind() == types.FieldVal {
				found = true
				return false
			}
		case *ast.KeyValueExpr:
			// Struct literal keys name fields, they read nothing.
			if id, ok := n.Key.(*ast.Ident); ok && isField(u.info.Uses[id]) {
				found = u.floating(n.Value)
				return false
			}
		case *ast.Ident:
			if v, ok := u.info.Uses[n].(*types.Var); ok && !v.IsField() {
				found = true
			}
		}

		return true
	})

	return found
}

// unordered reports whether some event lexically after e may run before
// the compiler reads the variables of e.
func (u *orderUnit) unordered(e ast.Expr) bool {
	for _, ev := range u.events {
		if ev.Pos() < e.End() {
			continue
		}

		if !u.sequenced(e, ev) {
			return true
		}
	}

	return false
}

// sequenced reports whether a logical operation forces e to be evaluated
// before ev.
func (u *orderUnit) sequenced(e ast.Expr, ev ast.Node) bool {
	for _, b := range u.logicals {
		if !encloses(b, e) {
			continue
		}

		if ev.Pos() >= b.End() || (encloses(b.X, e) && encloses(b.Y, ev)) {
			return true
		}
	}

	return false
}

func logical(b *ast.BinaryExpr) bool {
	return b.Op == token.LAND || b.Op == token.LOR
}

func isField(obj types.Object) bool {
	v, ok := obj.(*types.Var)
	return ok && v.IsField()
}

func encloses(outer, inner ast.Node) bool {
	return outer.Pos() <= inner.Pos() && inner.End() <= outer.End()
}
