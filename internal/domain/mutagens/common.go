package mutagens

import (
	"fmt"
	"go/ast"
	"go/token"
)

// parenthesize wraps operand in parentheses when it would bind looser than
// op at the given side.
func parenthesize(operand ast.Expr, op token.Token, right bool) ast.Expr {
	b, ok := operand.(*ast.BinaryExpr)
	if !ok {
		return operand
	}

	prec := b.Op.Precedence()
	if prec < op.Precedence() || (right && prec == op.Precedence()) {
		return &ast.ParenExpr{X: operand}
	}

	return operand
}

// swapBinary returns a copy of expr using op, built from the original operands.
func swapBinary(expr *ast.BinaryExpr, op token.Token) *ast.BinaryExpr {
	return &ast.BinaryExpr{
		X:  parenthesize(expr.X, op, false),
		Op: op,
		Y:  parenthesize(expr.Y, op, true),
	}
}

func describeSwap(from, to token.Token) string {
	return fmt.Sprintf("replace %s with %s", from, to)
}
