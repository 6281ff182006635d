// Package model defines the data structures shared by the schemata engine.
package model

import "go/ast"

// MutationType represents the category of a mutation rule.
type MutationType string

const (
	// MutationArithmetic swaps arithmetic operators (+ <-> -, * <-> /, % -> *).
	MutationArithmetic MutationType = "arithmetic"
	// MutationComparison negates comparison operators (== <-> !=, < <-> >=, > <-> <=).
	MutationComparison MutationType = "comparison"
	// MutationBoundary shifts relational boundaries (< -> <=, >= -> >).
	MutationBoundary MutationType = "boundary"
	// MutationLogical swaps && and || and removes logical negation.
	MutationLogical MutationType = "logical"
	// MutationBoolean flips the true and false literals.
	MutationBoolean MutationType = "boolean"
	// MutationString empties string literals or fills empty ones.
	MutationString MutationType = "string"
	// MutationTemplate replaces formatted string construction with "".
	MutationTemplate MutationType = "template"
	// MutationAPIPair swaps calls to antonym library functions.
	MutationAPIPair MutationType = "api-pair"
	// MutationAssignment swaps compound assignment operators.
	MutationAssignment MutationType = "assignment"
	// MutationIncDec swaps ++ and --.
	MutationIncDec MutationType = "incdec"
)

// MutationTypes lists every supported mutation type in rule order.
var MutationTypes = []MutationType{
	MutationArithmetic,
	MutationComparison,
	MutationBoundary,
	MutationLogical,
	MutationBoolean,
	MutationString,
	MutationTemplate,
	MutationAPIPair,
	MutationAssignment,
	MutationIncDec,
}

// ParseMutationType returns the MutationType named by s.
func ParseMutationType(s string) (MutationType, bool) {
	for _, t := range MutationTypes {
		if string(t) == s {
			return t, true
		}
	}

	return "", false
}

// Shape is the injection form used to embed a mutant.
type Shape string

const (
	// ShapeExpression wraps an expression in an activation-guarded selection.
	ShapeExpression Shape = "expression"
	// ShapeStatement duplicates a statement into guarded branches.
	ShapeStatement Shape = "statement"
)

// Span is the source range of a mutated node, 1-based.
type Span struct {
	File        Path
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Mutant is a single registered mutation.
//
// Site is the original node; Replacement is the alternative produced by the
// rule. Both point into syntax trees owned by the caller and must not be
// modified.
type Mutant struct {
	ID          int
	Type        MutationType
	Shape       Shape
	Description string
	Site        ast.Node
	Replacement ast.Node
	Location    Span
}
