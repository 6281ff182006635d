package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

var boundaryShifts = map[token.Token]token.Token{
	token.LSS: token.LEQ,
	token.LEQ: token.LSS,
	token.GTR: token.GEQ,
	token.GEQ: token.GTR,
}

// boundary moves a relational operator across its boundary value.
type boundary struct{}

func (boundary) Type() m.MutationType { return m.MutationBoundary }

func (boundary) Shape() m.Shape { return m.ShapeExpression }

func (boundary) Accepts(n ast.Node, role Role) bool {
	expr, ok := n.(*ast.BinaryExpr)
	if !ok || !isValueRole(role) {
		return false
	}

	_, ok = boundaryShifts[expr.Op]

	return ok
}

func (boundary) Mutate(n ast.Node, _ *Context) (Proposal, bool) {
	expr := n.(*ast.BinaryExpr)
	op := boundaryShifts[expr.Op]

	return Proposal{
		Replacement: swapBinary(expr, op),
		Description: describeSwap(expr.Op, op),
	}, true
}
