package mutagens

import (
	"go/ast"

	m "gooze.dev/pkg/schemata/internal/model"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// boolean flips the predeclared true and false.
type boolean struct{}

func (boolean) Type() m.MutationType { return m.MutationBoolean }

func (boolean) Shape() m.Shape { return m.ShapeExpression }

func (boolean) Accepts(n ast.Node, role Role) bool {
	id, ok := n.(*ast.Ident)

	return ok && isValueRole(role) && (id.Name == trueStr || id.Name == falseStr)
}

func (boolean) Mutate(n ast.Node, ctx *Context) (Proposal, bool) {
	id := n.(*ast.Ident)

	// A shadowed true or false is an ordinary variable.
	if !ctx.IsUniverse(id) {
		return Proposal{}, false
	}

	flipped := trueStr
	if id.Name == trueStr {
		flipped = falseStr
	}

	return Proposal{
		Replacement: ast.NewIdent(flipped),
		Description: "replace " + id.Name + " with " + flipped,
	}, true
}
