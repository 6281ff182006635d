package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/schemata/internal/model"
)

var templateFuncs = map[string]bool{
	"fmt.Sprintf":  true,
	"fmt.Sprint":   true,
	"fmt.Sprintln": true,
}

// printfFormats maps printf-style functions to the index of their format
// argument.
var printfFormats = map[string]int{
	"fmt.Sprintf":              0,
	"fmt.Printf":               0,
	"fmt.Errorf":               0,
	"fmt.Fprintf":              1,
	"fmt.Appendf":              1,
	"fmt.Sscanf":               1,
	"fmt.Fscanf":               1,
	"fmt.Scanf":                0,
	"log.Printf":               0,
	"log.Fatalf":               0,
	"log.Panicf":               0,
	"(*log.Logger).Printf":     0,
	"(*log.Logger).Fatalf":     0,
	"(*log.Logger).Panicf":     0,
	"(*testing.common).Errorf": 0,
	"(*testing.common).Fatalf": 0,
	"(*testing.common).Logf":   0,
	"(*testing.common).Skipf":  0,
}

// FormatArg returns the index of the format argument of a printf-style call,
// or -1.
func FormatArg(call *ast.CallExpr, ctx *Context) int {
	idx, ok := printfFormats[ctx.FuncName(call)]
	if !ok || idx >= len(call.Args) {
		return -1
	}

	return idx
}

// IsTemplate reports whether call builds a string from a template and
// held expressions.
func IsTemplate(call *ast.CallExpr, ctx *Context) bool {
	return templateFuncs[ctx.FuncName(call)]
}

// template replaces a whole string template with "".
type template struct{}

func (template) Type() m.MutationType { return m.MutationTemplate }

func (template) Shape() m.Shape { return m.ShapeExpression }

func (template) Accepts(n ast.Node, role Role) bool {
	_, ok := n.(*ast.CallExpr)

	return ok && isValueRole(role)
}

func (template) Mutate(n ast.Node, ctx *Context) (Proposal, bool) {
	call := n.(*ast.CallExpr)
	if !IsTemplate(call, ctx) {
		return Proposal{}, false
	}

	return Proposal{
		Replacement: &ast.BasicLit{Kind: token.STRING, Value: `""`},
		Description: "replace " + ctx.FuncName(call) + " result with \"\"",
	}, true
}
