package domain

import (
	"go/ast"
	"go/token"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
)

// Exclusion names why a sub-tree is never mutated.
type Exclusion string

const (
	// ExcludedConstant marks const declarations.
	ExcludedConstant Exclusion = "constant declaration"
	// ExcludedTag marks struct types, whose field tags are annotations.
	ExcludedTag Exclusion = "struct tag"
	// ExcludedSignature marks function signatures.
	ExcludedSignature Exclusion = "signature"
	// ExcludedTypeExpr marks other type expressions, including array lengths.
	ExcludedTypeExpr Exclusion = "type expression"
	// ExcludedConstantContext marks operands that must stay constant.
	ExcludedConstantContext Exclusion = "constant context"
	// ExcludedDirective marks declarations under a schemata:ignore directive.
	ExcludedDirective Exclusion = "ignore directive"
	// ExcludedImport marks import declarations.
	ExcludedImport Exclusion = "import"
	// ExcludedEvaluationOrder marks expressions whose variable reads would
	// move ahead of a later call once wrapped.
	ExcludedEvaluationOrder Exclusion = "evaluation order"
)

// exclusionFilter decides which sub-trees are copied verbatim.
type exclusionFilter struct {
	ctx    *mutagens.Context
	ignore ignoreIndex
}

// excluded reports whether n, found in the given role, must be copied
// unchanged.
func (f exclusionFilter) excluded(n ast.Node, role mutagens.Role) (Exclusion, bool) {
	switch node := n.(type) {
	case *ast.GenDecl:
		switch node.Tok {
		case token.CONST:
			return ExcludedConstant, true
		case token.IMPORT:
			return ExcludedImport, true
		case token.TYPE:
			return ExcludedTypeExpr, true
		}
	case *ast.FuncDecl:
		if rule, ok := f.ignore.funcByPos[node.Pos()]; ok && rule.all {
			return ExcludedDirective, true
		}
	case *ast.StructType:
		return ExcludedTag, true
	case *ast.FuncType:
		return ExcludedSignature, true
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.InterfaceType, *ast.Ellipsis:
		return ExcludedTypeExpr, true
	}

	if e, ok := n.(ast.Expr); ok && f.ctx.IsType(e) {
		return ExcludedTypeExpr, true
	}

	if role == mutagens.RoleConstant {
		return ExcludedConstantContext, true
	}

	return "", false
}
