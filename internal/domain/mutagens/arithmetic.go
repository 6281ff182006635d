package mutagens

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	m "gooze.dev/pkg/schemata/internal/model"
)

var arithmeticSwaps = map[token.Token]token.Token{
	token.ADD: token.SUB,
	token.SUB: token.ADD,
	token.MUL: token.QUO,
	token.QUO: token.MUL,
	token.REM: token.MUL,
}

// arithmetic swaps +/- and * / and turns % into *.
type arithmetic struct{}

func (arithmetic) Type() m.MutationType { return m.MutationArithmetic }

func (arithmetic) Shape() m.Shape { return m.ShapeExpression }

func (arithmetic) Accepts(n ast.Node, role Role) bool {
	expr, ok := n.(*ast.BinaryExpr)
	if !ok || !isValueRole(role) {
		return false
	}

	_, ok = arithmeticSwaps[expr.Op]

	return ok
}

func (arithmetic) Mutate(n ast.Node, ctx *Context) (Proposal, bool) {
	expr := n.(*ast.BinaryExpr)

	t := ctx.TypeOf(expr)
	if t == nil || ctx.IsString(expr) {
		return Proposal{}, false
	}

	op := arithmeticSwaps[expr.Op]
	if op == token.QUO && ctx.IsZero(expr.Y) {
		return Proposal{}, false
	}

	if !foldsInto(ctx, expr, op, t) {
		return Proposal{}, false
	}

	return Proposal{
		Replacement: swapBinary(expr, op),
		Description: describeSwap(expr.Op, op),
	}, true
}

// foldsInto reports whether a constant expression still fits its type once
// op is applied. Non-constant expressions always fit.
func foldsInto(ctx *Context, expr *ast.BinaryExpr, op token.Token, t types.Type) bool {
	x, y := ctx.ValueOf(expr.X), ctx.ValueOf(expr.Y)
	if x == nil || y == nil {
		return true
	}

	if op == token.QUO && isIntegerType(t) {
		op = token.QUO_ASSIGN
	}

	return ctx.Representable(constant.BinaryOp(x, op, y), t)
}

func isIntegerType(t types.Type) bool {
	b, ok := types.Default(t).Underlying().(*types.Basic)

	return ok && b.Info()&types.IsInteger != 0
}
