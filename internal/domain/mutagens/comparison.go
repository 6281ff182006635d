package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

var negations = map[token.Token]token.Token{
	token.EQL: token.NEQ,
	token.NEQ: token.EQL,
	token.LSS: token.GEQ,
	token.GEQ: token.LSS,
	token.GTR: token.LEQ,
	token.LEQ: token.GTR,
}

// comparison negates a comparison operator.
type comparison struct{}

func (comparison) Type() m.MutationType { return m.MutationComparison }

func (comparison) Shape() m.Shape { return m.ShapeExpression }

func (comparison) Accepts(n ast.Node, role Role) bool {
	expr, ok := n.(*ast.BinaryExpr)
	if !ok || !isValueRole(role) {
		return false
	}

	_, ok = negations[expr.Op]

	return ok
}

func (comparison) Mutate(n ast.Node, _ *Context) (Proposal, bool) {
	expr := n.(*ast.BinaryExpr)
	op := negations[expr.Op]

	return Proposal{
		Replacement: swapBinary(expr, op),
		Description: describeSwap(expr.Op, op),
	}, true
}
