package domain

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
)

// NoActiveMutant materializes the original program.
const NoActiveMutant = -1

// Materialize collapses the schemata of an instrumented file into plain Go
// code in which only mutant active is applied. alias and importPath name the
// runtime import, which is removed.
func Materialize(src []byte, alias, importPath string, active int) ([]byte, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse instrumented source: %w", err)
	}

	collapse(file, alias, active)
	astutil.DeleteNamedImport(fset, file, alias, importPath)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("failed to print materialized source: %w", err)
	}

	return buf.Bytes(), nil
}

// collapse replaces every activation check in file with the branch chosen
// for active. Nested checks are resolved first.
func collapse(file *ast.File, alias string, active int) {
	astutil.Apply(file, nil, func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.CallExpr:
			id, replacement, original, ok := matchExpression(n, alias)
			if !ok {
				return true
			}

			chosen := original
			if id == active {
				chosen = replacement
			}

			c.Replace(parenthesizeFor(c, chosen))
		case *ast.IfStmt:
			id, mutated, original, ok := matchStatement(n, alias)
			if !ok {
				return true
			}

			if id == active {
				c.Replace(mutated)
			} else {
				c.Replace(original)
			}
		}

		return true
	})
}

// activationID returns N for alias.IsActive(N).
func activationID(e ast.Expr, alias string) (int, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return 0, false
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != activationFunc {
		return 0, false
	}

	if x, ok := sel.X.(*ast.Ident); !ok || x.Name != alias {
		return 0, false
	}

	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, false
	}

	id, err := strconv.Atoi(lit.Value)
	if err != nil {
		return 0, false
	}

	return id, true
}

func matchExpression(call *ast.CallExpr, alias string) (int, ast.Expr, ast.Expr, bool) {
	lit, ok := call.Fun.(*ast.FuncLit)
	if !ok || len(call.Args) != 0 || len(lit.Body.List) != 2 {
		return 0, nil, nil, false
	}

	guard, ok := lit.Body.List[0].(*ast.IfStmt)
	if !ok || guard.Init != nil || guard.Else != nil || len(guard.Body.List) != 1 {
		return 0, nil, nil, false
	}

	id, ok := activationID(guard.Cond, alias)
	if !ok {
		return 0, nil, nil, false
	}

	mutated, ok := guard.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(mutated.Results) != 1 {
		return 0, nil, nil, false
	}

	original, ok := lit.Body.List[1].(*ast.ReturnStmt)
	if !ok || len(original.Results) != 1 {
		return 0, nil, nil, false
	}

	return id, mutated.Results[0], original.Results[0], true
}

func matchStatement(n *ast.IfStmt, alias string) (int, ast.Stmt, ast.Stmt, bool) {
	if n.Init != nil || len(n.Body.List) != 1 {
		return 0, nil, nil, false
	}

	els, ok := n.Else.(*ast.BlockStmt)
	if !ok || len(els.List) != 1 {
		return 0, nil, nil, false
	}

	id, ok := activationID(n.Cond, alias)
	if !ok {
		return 0, nil, nil, false
	}

	return id, n.Body.List[0], els.List[0], true
}

// parenthesizeFor wraps e when it binds looser than the expression it is
// moved into.
func parenthesizeFor(c *astutil.Cursor, e ast.Expr) ast.Expr {
	b, ok := e.(*ast.BinaryExpr)
	if !ok {
		return e
	}

	switch parent := c.Parent().(type) {
	case *ast.BinaryExpr:
		prec, outer := b.Op.Precedence(), parent.Op.Precedence()
		if prec < outer || (prec == outer && c.Name() == "Y") {
			return &ast.ParenExpr{X: e}
		}
	case *ast.UnaryExpr, *ast.StarExpr, *ast.SelectorExpr, *ast.IndexExpr,
		*ast.IndexListExpr, *ast.SliceExpr, *ast.TypeAssertExpr:
		return &ast.ParenExpr{X: e}
	case *ast.CallExpr:
		if c.Name() == "Fun" {
			return &ast.ParenExpr{X: e}
		}
	}

	return e
}
