package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

// incDec swaps ++ and --.
type incDec struct{}

func (incDec) Type() m.MutationType { return m.MutationIncDec }

func (incDec) Shape() m.Shape { return m.ShapeStatement }

func (incDec) Accepts(n ast.Node, role Role) bool {
	_, ok := n.(*ast.IncDecStmt)

	return ok && isStatementRole(role)
}

func (incDec) Mutate(n ast.Node, _ *Context) (Proposal, bool) {
	stmt := n.(*ast.IncDecStmt)

	tok := token.DEC
	if stmt.Tok == token.DEC {
		tok = token.INC
	}

	return Proposal{
		Replacement: &ast.IncDecStmt{X: stmt.X, Tok: tok},
		Description: describeSwap(stmt.Tok, tok),
	}, true
}
