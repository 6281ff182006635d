package domain

import (
	"go/ast"
	"go/token"
	"go/types"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
	m "gooze.dev/pkg/schemata/internal/model"
)

// expr rewrites e found in the given role. Children are rewritten first;
// the rules applicable to e then wrap the result, so inner mutants get the
// lower ids.
func (w *walker) expr(e ast.Expr, role mutagens.Role) (ast.Expr, []m.Mutant) {
	if e == nil {
		return nil, nil
	}

	if reason, ok := w.filter.excluded(e, role); ok {
		w.skip(e, reason)
		return e, nil
	}

	// Only the outermost node of a constant expression may move into a
	// closure; its operands keep constant semantics.
	inner := mutagens.RoleValue
	if w.ctx.ValueOf(e) != nil {
		inner = mutagens.RoleConstant
	}

	out, muts := w.exprChildren(e, role, inner)

	if role != mutagens.RoleValue {
		return out, muts
	}

	if _, ok := w.hazards[e]; ok {
		w.skip(e, ExcludedEvaluationOrder)
		return out, muts
	}

	cands := w.candidates(e, role, m.ShapeExpression)
	if len(cands) == 0 {
		return out, muts
	}

	return w.fold(out, cands).(ast.Expr), append(muts, mutantsOf(cands)...)
}

func (w *walker) exprs(list []ast.Expr, role mutagens.Role) ([]ast.Expr, []m.Mutant) {
	var (
		out  []ast.Expr
		muts []m.Mutant
	)

	for i, e := range list {
		ne, em := w.expr(e, role)
		if ne != e && out == nil {
			out = make([]ast.Expr, len(list))
			copy(out, list[:i])
		}

		if out != nil {
			out[i] = ne
		}

		muts = append(muts, em...)
	}

	if out == nil {
		return list, muts
	}

	return out, muts
}

// within returns r unless the enclosing expression is constant.
func within(r, inner mutagens.Role) mutagens.Role {
	if inner == mutagens.RoleConstant {
		return inner
	}

	return r
}

//nolint:cyclop,funlen // Expression kinds are dispatched in one place
func (w *walker) exprChildren(e ast.Expr, role, inner mutagens.Role) (ast.Expr, []m.Mutant) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		x, muts := w.expr(n.X, role)
		if x == n.X {
			return e, muts
		}

		c := *n
		c.X = x

		return &c, muts
	case *ast.BinaryExpr:
		yRole := inner
		if (n.Op == token.SHL || n.Op == token.SHR) && w.ctx.ValueOf(n.X) != nil {
			// the type of a constant shift operand depends on the count being constant
			yRole = mutagens.RoleConstant
		}

		x, mx := w.expr(n.X, inner)
		y, my := w.expr(n.Y, yRole)

		if x == n.X && y == n.Y {
			return e, append(mx, my...)
		}

		c := *n
		c.X, c.Y = x, y

		return &c, append(mx, my...)
	case *ast.UnaryExpr:
		xRole := inner
		if n.Op == token.AND {
			xRole = within(mutagens.RoleAddressable, inner)
		}

		x, muts := w.expr(n.X, xRole)
		if x == n.X {
			return e, muts
		}

		c := *n
		c.X = x

		return &c, muts
	case *ast.StarExpr:
		x, muts := w.expr(n.X, inner)
		if x == n.X {
			return e, muts
		}

		c := *n
		c.X = x

		return &c, muts
	case *ast.CallExpr:
		return w.call(n, inner)
	case *ast.IndexExpr:
		x, mx := w.expr(n.X, within(mutagens.RoleAddressable, inner))
		idx, mi := w.expr(n.Index, inner)

		if x == n.X && idx == n.Index {
			return e, append(mx, mi...)
		}

		c := *n
		c.X, c.Index = x, idx

		return &c, append(mx, mi...)
	case *ast.IndexListExpr:
		x, mx := w.expr(n.X, within(mutagens.RoleAddressable, inner))
		indices, mi := w.exprs(n.Indices, inner)

		if x == n.X && sameExprs(indices, n.Indices) {
			return e, append(mx, mi...)
		}

		c := *n
		c.X, c.Indices = x, indices

		return &c, append(mx, mi...)
	case *ast.SliceExpr:
		return w.slice(n, inner)
	case *ast.SelectorExpr:
		x, muts := w.expr(n.X, within(mutagens.RoleAddressable, inner))
		if x == n.X {
			return e, muts
		}

		c := *n
		c.X = x

		return &c, muts
	case *ast.TypeAssertExpr:
		x, muts := w.expr(n.X, inner)
		if x == n.X {
			return e, muts
		}

		c := *n
		c.X = x

		return &c, muts
	case *ast.CompositeLit:
		return w.compositeLit(n, inner)
	case *ast.KeyValueExpr:
		k, mk := w.expr(n.Key, inner)
		v, mv := w.expr(n.Value, inner)

		if k == n.Key && v == n.Value {
			return e, append(mk, mv...)
		}

		c := *n
		c.Key, c.Value = k, v

		return &c, append(mk, mv...)
	case *ast.FuncLit:
		body, muts := w.block(n.Body)
		if body == n.Body {
			return e, muts
		}

		c := *n
		c.Body = body

		return &c, muts
	default:
		return e, nil
	}
}

func (w *walker) slice(n *ast.SliceExpr, inner mutagens.Role) (ast.Expr, []m.Mutant) {
	x, muts := w.expr(n.X, within(mutagens.RoleAddressable, inner))
	low, ml := w.expr(n.Low, inner)
	high, mh := w.expr(n.High, inner)
	maxExpr, mm := w.expr(n.Max, inner)

	muts = append(muts, ml...)
	muts = append(muts, mh...)
	muts = append(muts, mm...)

	if x == n.X && low == n.Low && high == n.High && maxExpr == n.Max {
		return n, muts
	}

	c := *n
	c.X, c.Low, c.High, c.Max = x, low, high, maxExpr

	return &c, muts
}

// call rewrites the callee and arguments of a call. The format argument of
// a printf-style call is template text and keeps its literal form.
func (w *walker) call(n *ast.CallExpr, inner mutagens.Role) (*ast.CallExpr, []m.Mutant) {
	fun, muts := w.expr(n.Fun, within(mutagens.RoleAddressable, inner))

	format := -1
	if inner != mutagens.RoleConstant {
		format = mutagens.FormatArg(n, w.ctx)
	}

	var args []ast.Expr

	for i, a := range n.Args {
		role := inner
		if i == format {
			role = mutagens.RoleTemplateText
		}

		na, am := w.expr(a, role)
		muts = append(muts, am...)

		if na != a && args == nil {
			args = make([]ast.Expr, len(n.Args))
			copy(args, n.Args[:i])
		}

		if args != nil {
			args[i] = na
		}
	}

	if fun == n.Fun && args == nil {
		return n, muts
	}

	c := *n
	c.Fun = fun

	if args != nil {
		c.Args = args
	}

	return &c, muts
}

// compositeLit rewrites element values. Keys stay verbatim except in map
// literals: array indices and field names must remain constant.
func (w *walker) compositeLit(n *ast.CompositeLit, inner mutagens.Role) (ast.Expr, []m.Mutant) {
	keyRole := mutagens.RoleConstant
	if w.isMapLit(n) {
		keyRole = inner
	}

	var (
		elts []ast.Expr
		muts []m.Mutant
	)

	for i, elt := range n.Elts {
		var ne ast.Expr

		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			k, mk := w.expr(kv.Key, keyRole)
			v, mv := w.expr(kv.Value, inner)
			muts = append(muts, mk...)
			muts = append(muts, mv...)

			ne = elt
			if k != kv.Key || v != kv.Value {
				c := *kv
				c.Key, c.Value = k, v
				ne = &c
			}
		} else {
			var em []m.Mutant
			ne, em = w.expr(elt, inner)
			muts = append(muts, em...)
		}

		if ne != elt && elts == nil {
			elts = make([]ast.Expr, len(n.Elts))
			copy(elts, n.Elts[:i])
		}

		if elts != nil {
			elts[i] = ne
		}
	}

	if elts == nil {
		return n, muts
	}

	c := *n
	c.Elts = elts

	return &c, muts
}

func (w *walker) isMapLit(n *ast.CompositeLit) bool {
	t := w.ctx.TypeOf(n)
	if t == nil {
		return false
	}

	if p, ok := t.Underlying().(*types.Pointer); ok {
		t = p.Elem()
	}

	_, ok := t.Underlying().(*types.Map)

	return ok
}
