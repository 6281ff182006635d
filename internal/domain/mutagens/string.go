package mutagens

import (
	"go/ast"
	"go/token"
	"strconv"

	m "gooze.dev/pkg/schemata/internal/model"
)

// Sentinel replaces empty string literals.
const Sentinel = "Schemata was here!"

// stringLiteral empties non-empty string literals and fills empty ones.
type stringLiteral struct{}

func (stringLiteral) Type() m.MutationType { return m.MutationString }

func (stringLiteral) Shape() m.Shape { return m.ShapeExpression }

func (stringLiteral) Accepts(n ast.Node, role Role) bool {
	lit, ok := n.(*ast.BasicLit)

	return ok && isValueRole(role) && lit.Kind == token.STRING
}

func (stringLiteral) Mutate(n ast.Node, _ *Context) (Proposal, bool) {
	lit := n.(*ast.BasicLit)

	value, err := strconv.Unquote(lit.Value)
	if err != nil {
		return Proposal{}, false
	}

	replacement := ""
	if value == "" {
		replacement = Sentinel
	}

	return Proposal{
		Replacement: &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(replacement)},
		Description: "replace " + lit.Value + " with " + strconv.Quote(replacement),
	}, true
}
