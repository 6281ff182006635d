// Package mutagens provides the mutation rules consulted by the walker.
//
// A rule recognises one category of mutable construct and proposes exactly
// one alternative for it. Rules are stateless and never see more of the tree
// than the node they are handed.
package mutagens

import (
	"go/ast"

	m "gooze.dev/pkg/schemata/internal/model"
)

// Role is the syntactic context a node occupies in its parent.
type Role int

const (
	// RoleValue is an expression evaluated for its value.
	RoleValue Role = iota
	// RoleStatement is a statement inside a statement list.
	RoleStatement
	// RoleLoopPost is the post statement of a for loop header.
	RoleLoopPost
	// RoleInit is the init statement of an if, for or switch header.
	RoleInit
	// RoleAddressable is an operand that must stay addressable or assignable.
	RoleAddressable
	// RoleDeferred is the call of a go or defer statement.
	RoleDeferred
	// RoleTemplateText is the format argument of a printf-style call.
	RoleTemplateText
	// RoleConstant is an operand whose value must stay a compile-time constant.
	RoleConstant
)

func (r Role) String() string {
	switch r {
	case RoleValue:
		return "value"
	case RoleStatement:
		return "statement"
	case RoleLoopPost:
		return "loop-post"
	case RoleInit:
		return "init"
	case RoleAddressable:
		return "addressable"
	case RoleDeferred:
		return "deferred"
	case RoleTemplateText:
		return "template-text"
	case RoleConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// Proposal is the single alternative a rule offers for a node.
// Replacement is built from the original children of the node.
type Proposal struct {
	Replacement ast.Node
	Description string
}

// Rule proposes one mutation for a category of nodes.
type Rule interface {
	// Type returns the mutation category.
	Type() m.MutationType
	// Shape returns the injection form the rule's proposals need.
	Shape() m.Shape
	// Accepts reports whether the rule handles n in the given role.
	Accepts(n ast.Node, role Role) bool
	// Mutate returns the alternative for n, or false when n cannot be
	// mutated safely.
	Mutate(n ast.Node, ctx *Context) (Proposal, bool)
}

// Default returns every rule in registration order.
func Default() []Rule {
	return []Rule{
		arithmetic{},
		comparison{},
		boundary{},
		logical{},
		boolean{},
		stringLiteral{},
		template{},
		apiPair{},
		assignment{},
		incDec{},
	}
}

// Select returns the default rules restricted to the given types, keeping
// registration order. No types selects every rule.
func Select(types ...m.MutationType) []Rule {
	all := Default()
	if len(types) == 0 {
		return all
	}

	wanted := make(map[m.MutationType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	rules := make([]Rule, 0, len(types))

	for _, r := range all {
		if _, ok := wanted[r.Type()]; ok {
			rules = append(rules, r)
		}
	}

	return rules
}

func isValueRole(role Role) bool {
	return role == RoleValue
}

func isStatementRole(role Role) bool {
	return role == RoleStatement || role == RoleLoopPost
}
