package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

// logical swaps && and || and drops a logical negation.
type logical struct{}

func (logical) Type() m.MutationType { return m.MutationLogical }

func (logical) Shape() m.Shape { return m.ShapeExpression }

func (logical) Accepts(n ast.Node, role Role) bool {
	if !isValueRole(role) {
		return false
	}

	switch expr := n.(type) {
	case *ast.BinaryExpr:
		return expr.Op == token.LAND || expr.Op == token.LOR
	case *ast.UnaryExpr:
		return expr.Op == token.NOT
	default:
		return false
	}
}

func (logical) Mutate(n ast.Node, _ *Context) (Proposal, bool) {
	switch expr := n.(type) {
	case *ast.BinaryExpr:
		op := token.LOR
		if expr.Op == token.LOR {
			op = token.LAND
		}

		return Proposal{
			Replacement: swapBinary(expr, op),
			Description: describeSwap(expr.Op, op),
		}, true
	case *ast.UnaryExpr:
		return Proposal{
			Replacement: expr.X,
			Description: "remove !",
		}, true
	default:
		return Proposal{}, false
	}
}
