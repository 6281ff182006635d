package domain

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	m "gooze.dev/pkg/schemata/internal/model"
)

// ErrShapeMismatch reports an injection request whose shape does not fit
// the rewritten node. It signals a defect in the walker.
var ErrShapeMismatch = errors.New("injection shape does not match node")

// activationFunc is the runtime function consulted by instrumented code.
const activationFunc = "IsActive"

// candidate is a registered mutant waiting to be folded into the tree.
type candidate struct {
	mutant m.Mutant
	// result type of an expression mutant
	typ ast.Expr
	// replacement folded into the tree when it differs from the recorded one
	replacement ast.Node
}

func (c candidate) fragment() ast.Node {
	if c.replacement != nil {
		return c.replacement
	}

	return c.mutant.Replacement
}

// injector folds candidates into rewritten nodes.
type injector struct {
	alias string
}

// inject wraps rewritten so that the candidate's replacement runs when its
// mutant is active and rewritten runs otherwise.
func (in injector) inject(rewritten ast.Node, c candidate) (ast.Node, error) {
	switch c.mutant.Shape {
	case m.ShapeExpression:
		original, ok := rewritten.(ast.Expr)
		replacement, ok2 := c.fragment().(ast.Expr)

		if !ok || !ok2 || c.typ == nil {
			return nil, fmt.Errorf("%w: mutant %d wants an expression", ErrShapeMismatch, c.mutant.ID)
		}

		return in.expression(c.mutant.ID, c.typ, replacement, original), nil
	case m.ShapeStatement:
		original, ok := rewritten.(ast.Stmt)
		replacement, ok2 := c.fragment().(ast.Stmt)

		if !ok || !ok2 {
			return nil, fmt.Errorf("%w: mutant %d wants a statement", ErrShapeMismatch, c.mutant.ID)
		}

		return in.statement(c.mutant.ID, replacement, original), nil
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrShapeMismatch, c.mutant.Shape)
	}
}

// isActive builds alias.IsActive(id).
func (in injector) isActive(id int) ast.Expr {
	return &ast.CallExpr{
		Fun: &ast.SelectorExpr{
			X:   ast.NewIdent(in.alias),
			Sel: ast.NewIdent(activationFunc),
		},
		Args: []ast.Expr{&ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(id)}},
	}
}

// expression builds
//
//	func() T {
//		if alias.IsActive(id) {
//			return replacement
//		}
//		return original
//	}()
func (in injector) expression(id int, typ ast.Expr, replacement, original ast.Expr) ast.Expr {
	return &ast.CallExpr{
		Fun: &ast.FuncLit{
			Type: &ast.FuncType{
				Params:  &ast.FieldList{},
				Results: &ast.FieldList{List: []*ast.Field{{Type: typ}}},
			},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				&ast.IfStmt{
					Cond: in.isActive(id),
					Body: &ast.BlockStmt{List: []ast.Stmt{
						&ast.ReturnStmt{Results: []ast.Expr{replacement}},
					}},
				},
				&ast.ReturnStmt{Results: []ast.Expr{original}},
			}},
		},
	}
}

// statement builds
//
//	if alias.IsActive(id) {
//		mutated
//	} else {
//		original
//	}
func (in injector) statement(id int, mutated, original ast.Stmt) ast.Stmt {
	return &ast.IfStmt{
		Cond: in.isActive(id),
		Body: &ast.BlockStmt{List: []ast.Stmt{mutated}},
		Else: &ast.BlockStmt{List: []ast.Stmt{original}},
	}
}
