package mutagens

import (
	"go/ast"

	m "gooze.dev/pkg/schemata/internal/model"
)

// antonyms maps a function to the name of its counterpart in the same
// package or method set.
var antonyms = map[string]string{
	"min": "max",
	"max": "min",

	"math.Min":   "Max",
	"math.Max":   "Min",
	"math.Floor": "Ceil",
	"math.Ceil":  "Floor",

	"slices.Min": "Max",
	"slices.Max": "Min",

	"(time.Time).Before": "After",
	"(time.Time).After":  "Before",
}

func init() {
	pairs := [][2]string{
		{"HasPrefix", "HasSuffix"},
		{"Index", "LastIndex"},
		{"IndexByte", "LastIndexByte"},
		{"IndexAny", "LastIndexAny"},
		{"IndexFunc", "LastIndexFunc"},
		{"TrimLeft", "TrimRight"},
		{"TrimPrefix", "TrimSuffix"},
		{"ToUpper", "ToLower"},
	}

	for _, pkg := range []string{"strings", "bytes"} {
		for _, p := range pairs {
			antonyms[pkg+"."+p[0]] = p[1]
			antonyms[pkg+"."+p[1]] = p[0]
		}
	}
}

// apiPair calls the antonym of a well-known library function.
type apiPair struct{}

func (apiPair) Type() m.MutationType { return m.MutationAPIPair }

func (apiPair) Shape() m.Shape { return m.ShapeExpression }

func (apiPair) Accepts(n ast.Node, role Role) bool {
	call, ok := n.(*ast.CallExpr)
	if !ok || !isValueRole(role) {
		return false
	}

	switch ast.Unparen(call.Fun).(type) {
	case *ast.Ident, *ast.SelectorExpr:
		return true
	default:
		return false
	}
}

func (apiPair) Mutate(n ast.Node, ctx *Context) (Proposal, bool) {
	call := n.(*ast.CallExpr)
	name := ctx.FuncName(call)

	other, ok := antonyms[name]
	if !ok {
		return Proposal{}, false
	}

	var fun ast.Expr

	switch f := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		// Builtins can be shadowed at the call site.
		if !ctx.Resolves(other, call.Pos()) {
			return Proposal{}, false
		}

		fun = ast.NewIdent(other)
	case *ast.SelectorExpr:
		fun = &ast.SelectorExpr{X: f.X, Sel: ast.NewIdent(other)}
	default:
		return Proposal{}, false
	}

	return Proposal{
		Replacement: &ast.CallExpr{Fun: fun, Args: call.Args, Ellipsis: call.Ellipsis},
		Description: "call " + other + " instead of " + name,
	}, true
}
