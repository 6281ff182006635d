package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

var assignmentSwaps = map[token.Token]token.Token{
	token.ADD_ASSIGN: token.SUB_ASSIGN,
	token.SUB_ASSIGN: token.ADD_ASSIGN,
	token.MUL_ASSIGN: token.QUO_ASSIGN,
	token.QUO_ASSIGN: token.MUL_ASSIGN,
	token.REM_ASSIGN: token.MUL_ASSIGN,
	token.SHL_ASSIGN: token.SHR_ASSIGN,
	token.SHR_ASSIGN: token.SHL_ASSIGN,
	token.AND_ASSIGN: token.OR_ASSIGN,
	token.OR_ASSIGN:  token.AND_ASSIGN,
}

// assignment swaps the operator of a compound assignment.
type assignment struct{}

func (assignment) Type() m.MutationType { return m.MutationAssignment }

func (assignment) Shape() m.Shape { return m.ShapeStatement }

func (assignment) Accepts(n ast.Node, role Role) bool {
	stmt, ok := n.(*ast.AssignStmt)
	if !ok || !isStatementRole(role) || len(stmt.Lhs) != 1 || len(stmt.Rhs) != 1 {
		return false
	}

	_, ok = assignmentSwaps[stmt.Tok]

	return ok
}

func (assignment) Mutate(n ast.Node, ctx *Context) (Proposal, bool) {
	stmt := n.(*ast.AssignStmt)

	// Without types a string += cannot be told apart from a numeric one.
	if !ctx.Typed() || ctx.TypeOf(stmt.Lhs[0]) == nil || ctx.IsString(stmt.Lhs[0]) {
		return Proposal{}, false
	}

	tok := assignmentSwaps[stmt.Tok]
	if tok == token.QUO_ASSIGN && ctx.IsZero(stmt.Rhs[0]) {
		return Proposal{}, false
	}

	return Proposal{
		Replacement: &ast.AssignStmt{Lhs: stmt.Lhs, Tok: tok, Rhs: stmt.Rhs},
		Description: describeSwap(stmt.Tok, tok),
	}, true
}
