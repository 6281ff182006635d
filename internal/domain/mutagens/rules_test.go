package mutagens

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/schemata/internal/model"
)

func binary(op token.Token) func(*ast.BinaryExpr) bool {
	return func(e *ast.BinaryExpr) bool { return e.Op == op }
}

func TestExpressionRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		src     string
		pick    func(t *testing.T, file *ast.File) ast.Node
		want    string
		decline bool
	}{
		{
			name: "arithmetic swaps plus",
			rule: arithmetic{},
			src:  "package p\nfunc f(i int) int { return i + 8 }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.ADD)) },
			want: "i - 8",
		},
		{
			name: "arithmetic turns remainder into product",
			rule: arithmetic{},
			src:  "package p\nfunc f(i int) int { return i % 3 }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.REM)) },
			want: "i * 3",
		},
		{
			name: "arithmetic keeps operand parentheses",
			rule: arithmetic{},
			src:  "package p\nfunc f(a, b, c int) int { return a - (b + c) }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.SUB)) },
			want: "a + (b + c)",
		},
		{
			name:    "arithmetic skips string concatenation",
			rule:    arithmetic{},
			src:     "package p\nfunc f(s string) string { return s + \"x\" }",
			pick:    func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.ADD)) },
			decline: true,
		},
		{
			name:    "arithmetic skips constant division by zero",
			rule:    arithmetic{},
			src:     "package p\nfunc f(i int) int { return i * 0 }",
			pick:    func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.MUL)) },
			decline: true,
		},
		{
			name: "arithmetic folds representable constants",
			rule: arithmetic{},
			src:  "package p\nvar v uint8 = 5 - 3",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.SUB)) },
			want: "5 + 3",
		},
		{
			name:    "arithmetic skips unrepresentable folded constant",
			rule:    arithmetic{},
			src:     "package p\nvar v uint8 = 3 + 5",
			pick:    func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.ADD)) },
			decline: true,
		},
		{
			name: "comparison negates equality",
			rule: comparison{},
			src:  "package p\nfunc f(i int) bool { return i+8 == 8 }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.EQL)) },
			want: "i+8 != 8",
		},
		{
			name: "comparison negates less",
			rule: comparison{},
			src:  "package p\nfunc f(i int) bool { return i < 10 }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.LSS)) },
			want: "i >= 10",
		},
		{
			name: "boundary shifts less",
			rule: boundary{},
			src:  "package p\nfunc f(i int) bool { return i < 10 }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.LSS)) },
			want: "i <= 10",
		},
		{
			name: "logical swaps and",
			rule: logical{},
			src:  "package p\nfunc f(a, b bool) bool { return a && b }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, binary(token.LAND)) },
			want: "a || b",
		},
		{
			name: "logical keeps precedence when swapping or",
			rule: logical{},
			src:  "package p\nfunc f(a, b, c bool) bool { return a || b || c }",
			pick: func(t *testing.T, f *ast.File) ast.Node {
				return find(t, f, func(e *ast.BinaryExpr) bool { _, ok := e.X.(*ast.BinaryExpr); return ok })
			},
			want: "(a || b) && c",
		},
		{
			name: "logical drops negation",
			rule: logical{},
			src:  "package p\nfunc f(a bool) bool { return !a }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.UnaryExpr]) },
			want: "a",
		},
		{
			name: "boolean flips true",
			rule: boolean{},
			src:  "package p\nfunc f() bool { return true }",
			pick: func(t *testing.T, f *ast.File) ast.Node {
				return find(t, f, func(id *ast.Ident) bool { return id.Name == "true" })
			},
			want: "false",
		},
		{
			name: "boolean leaves shadowed identifiers",
			rule: boolean{},
			src:  "package p\nfunc f() int { true := 1; return true }",
			pick: func(t *testing.T, f *ast.File) ast.Node {
				ret := find(t, f, first[*ast.ReturnStmt])
				return ret.Results[0]
			},
			decline: true,
		},
		{
			name: "string empties literal",
			rule: stringLiteral{},
			src:  "package p\nfunc f(g func(string)) { g(\"Accept\") }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.BasicLit]) },
			want: `""`,
		},
		{
			name: "string fills empty literal",
			rule: stringLiteral{},
			src:  "package p\nfunc f() string { return `` }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.BasicLit]) },
			want: `"Schemata was here!"`,
		},
		{
			name: "template empties sprintf",
			rule: template{},
			src:  "package p\nimport \"fmt\"\nfunc f(n int) string { return fmt.Sprintf(\"test%d\", n+1) }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.CallExpr]) },
			want: `""`,
		},
		{
			name:    "template ignores other calls",
			rule:    template{},
			src:     "package p\nimport \"strings\"\nfunc f(s string) string { return strings.ToUpper(s) }",
			pick:    func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.CallExpr]) },
			decline: true,
		},
		{
			name: "api pair swaps prefix check",
			rule: apiPair{},
			src:  "package p\nimport \"strings\"\nfunc f(s string) bool { return strings.HasPrefix(s, \"a\") }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.CallExpr]) },
			want: `strings.HasSuffix(s, "a")`,
		},
		{
			name: "api pair swaps methods",
			rule: apiPair{},
			src:  "package p\nimport \"time\"\nfunc f(a, b time.Time) bool { return a.Before(b) }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.CallExpr]) },
			want: "a.After(b)",
		},
		{
			name: "api pair swaps builtins",
			rule: apiPair{},
			src:  "package p\nfunc f(a, b int) int { return min(a, b) }",
			pick: func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.CallExpr]) },
			want: "max(a, b)",
		},
		{
			name:    "api pair respects shadowed builtins",
			rule:    apiPair{},
			src:     "package p\nfunc f(a, b int) int { max := 0; _ = max; return min(a, b) }",
			pick:    func(t *testing.T, f *ast.File) ast.Node { return find(t, f, first[*ast.CallExpr]) },
			decline: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, ctx := checkSource(t, tt.src)
			node := tt.pick(t, file)

			require.True(t, tt.rule.Accepts(node, RoleValue))
			assert.False(t, tt.rule.Accepts(node, RoleAddressable))
			assert.Equal(t, m.ShapeExpression, tt.rule.Shape())

			proposal, ok := tt.rule.Mutate(node, ctx)
			if tt.decline {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.NotEmpty(t, proposal.Description)
			assert.Equal(t, tt.want, render(t, proposal.Replacement))
		})
	}
}

func TestStatementRules(t *testing.T) {
	t.Run("assignment swaps multiply", func(t *testing.T) {
		file, ctx := checkSource(t, "package p\nfunc f(x int) { x *= x + 2; _ = x }")
		stmt := find(t, file, func(s *ast.AssignStmt) bool { return s.Tok == token.MUL_ASSIGN })

		rule := assignment{}
		require.True(t, rule.Accepts(stmt, RoleStatement))
		assert.True(t, rule.Accepts(stmt, RoleLoopPost))
		assert.False(t, rule.Accepts(stmt, RoleInit))

		proposal, ok := rule.Mutate(stmt, ctx)
		require.True(t, ok)
		assert.Equal(t, "x /= x + 2", render(t, proposal.Replacement))
		assert.Equal(t, m.ShapeStatement, rule.Shape())
	})

	t.Run("assignment skips strings", func(t *testing.T) {
		file, ctx := checkSource(t, "package p\nfunc f(s string) string { s += \"x\"; return s }")
		stmt := find(t, file, func(s *ast.AssignStmt) bool { return s.Tok == token.ADD_ASSIGN })

		_, ok := assignment{}.Mutate(stmt, ctx)
		assert.False(t, ok)
	})

	t.Run("assignment skips division by zero", func(t *testing.T) {
		file, ctx := checkSource(t, "package p\nfunc f(x int) int { x *= 0; return x }")
		stmt := find(t, file, func(s *ast.AssignStmt) bool { return s.Tok == token.MUL_ASSIGN })

		_, ok := assignment{}.Mutate(stmt, ctx)
		assert.False(t, ok)
	})

	t.Run("assignment needs types", func(t *testing.T) {
		file, _ := checkSource(t, "package p\nfunc f(x int) int { x += 1; return x }")
		stmt := find(t, file, func(s *ast.AssignStmt) bool { return s.Tok == token.ADD_ASSIGN })

		_, ok := assignment{}.Mutate(stmt, NewContext(nil, nil))
		assert.False(t, ok)
	})

	t.Run("incdec swaps increment", func(t *testing.T) {
		file, _ := checkSource(t, "package p\nfunc f(x int) int { x++; return x }")
		stmt := find(t, file, first[*ast.IncDecStmt])

		rule := incDec{}
		require.True(t, rule.Accepts(stmt, RoleStatement))
		assert.False(t, rule.Accepts(stmt, RoleInit))

		proposal, ok := rule.Mutate(stmt, NewContext(nil, nil))
		require.True(t, ok)
		assert.Equal(t, "x--", render(t, proposal.Replacement))
	})
}

func TestSelect(t *testing.T) {
	t.Run("no types selects everything", func(t *testing.T) {
		assert.Len(t, Select(), len(m.MutationTypes))
	})

	t.Run("keeps registration order", func(t *testing.T) {
		rules := Select(m.MutationIncDec, m.MutationArithmetic)
		require.Len(t, rules, 2)
		assert.Equal(t, m.MutationArithmetic, rules[0].Type())
		assert.Equal(t, m.MutationIncDec, rules[1].Type())
	})

	t.Run("default order matches model", func(t *testing.T) {
		for i, r := range Default() {
			assert.Equal(t, m.MutationTypes[i], r.Type())
		}
	})
}

func TestContext(t *testing.T) {
	t.Run("representable", func(t *testing.T) {
		file, ctx := checkSource(t, "package p\nvar a uint8 = 200\nvar b int8 = -128\nvar c float32 = 1.5")
		_ = file

		u8 := ctx.Pkg.Scope().Lookup("a").Type()
		i8 := ctx.Pkg.Scope().Lookup("b").Type()
		f32 := ctx.Pkg.Scope().Lookup("c").Type()

		assert.True(t, ctx.Representable(constantInt(255), u8))
		assert.False(t, ctx.Representable(constantInt(256), u8))
		assert.False(t, ctx.Representable(constantInt(-1), u8))
		assert.True(t, ctx.Representable(constantInt(-128), i8))
		assert.False(t, ctx.Representable(constantInt(128), i8))
		assert.True(t, ctx.Representable(constantInt(3), f32))
		assert.False(t, ctx.Representable(constantFloat(3.5), u8))
	})

	t.Run("func names", func(t *testing.T) {
		file, ctx := checkSource(t, "package p\nimport \"fmt\"\nfunc f() string { return fmt.Sprint(len(\"x\")) }")
		call := find(t, file, func(c *ast.CallExpr) bool {
			sel, ok := c.Fun.(*ast.SelectorExpr)
			return ok && sel.Sel.Name == "Sprint"
		})
		assert.Equal(t, "fmt.Sprint", ctx.FuncName(call))
		assert.True(t, IsTemplate(call, ctx))

		inner := find(t, file, func(c *ast.CallExpr) bool {
			id, ok := c.Fun.(*ast.Ident)
			return ok && id.Name == "len"
		})
		assert.Equal(t, "len", ctx.FuncName(inner))
	})

	t.Run("format argument", func(t *testing.T) {
		file, ctx := checkSource(t, "package p\nimport (\"fmt\"; \"os\")\nfunc f() { fmt.Fprintf(os.Stdout, \"%d\", 1) }")
		call := find(t, file, first[*ast.CallExpr])
		assert.Equal(t, 1, FormatArg(call, ctx))
	})
}
