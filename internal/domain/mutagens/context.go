package mutagens

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"math"
	"runtime"
)

// Context gives rules read access to the type information of the file
// being mutated. A Context with nil Info is valid: rules that need types
// then decline.
type Context struct {
	Info  *types.Info
	Pkg   *types.Package
	sizes types.Sizes
}

// NewContext returns a Context over the given type information.
func NewContext(info *types.Info, pkg *types.Package) *Context {
	sizes := types.SizesFor("gc", runtime.GOARCH)
	if sizes == nil {
		sizes = types.SizesFor("gc", "amd64")
	}

	return &Context{Info: info, Pkg: pkg, sizes: sizes}
}

// Typed reports whether type information is available.
func (c *Context) Typed() bool {
	return c != nil && c.Info != nil
}

// TypeOf returns the type of e, or nil.
func (c *Context) TypeOf(e ast.Expr) types.Type {
	if !c.Typed() {
		return nil
	}

	return c.Info.TypeOf(e)
}

// ValueOf returns the constant value of e, or nil when e is not constant.
func (c *Context) ValueOf(e ast.Expr) constant.Value {
	if !c.Typed() || e == nil {
		return nil
	}

	if tv, ok := c.Info.Types[e]; ok {
		return tv.Value
	}

	return nil
}

// IsType reports whether e denotes a type.
func (c *Context) IsType(e ast.Expr) bool {
	if !c.Typed() || e == nil {
		return false
	}

	if tv, ok := c.Info.Types[e]; ok {
		return tv.IsType()
	}

	return false
}

// IsUniverse reports whether id refers to the predeclared object of the
// same name.
func (c *Context) IsUniverse(id *ast.Ident) bool {
	if !c.Typed() {
		return false
	}

	obj := c.Info.Uses[id]

	return obj != nil && obj == types.Universe.Lookup(id.Name)
}

// IsString reports whether e has a string type.
func (c *Context) IsString(e ast.Expr) bool {
	t := c.TypeOf(e)
	if t == nil {
		return false
	}

	b, ok := t.Underlying().(*types.Basic)

	return ok && b.Info()&types.IsString != 0
}

// IsZero reports whether e is the constant zero.
func (c *Context) IsZero(e ast.Expr) bool {
	v := c.ValueOf(e)
	if v == nil {
		return false
	}

	switch v.Kind() {
	case constant.Int, constant.Float, constant.Complex:
		return constant.Sign(v) == 0
	default:
		return false
	}
}

// FuncName returns the qualified name of the function called by call, as
// reported by types.Func.FullName ("strings.HasPrefix",
// "(time.Time).Before"), or the bare name of a builtin ("min").
func (c *Context) FuncName(call *ast.CallExpr) string {
	if !c.Typed() {
		return ""
	}

	var id *ast.Ident

	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		id = fun
	case *ast.SelectorExpr:
		id = fun.Sel
	default:
		return ""
	}

	switch obj := c.Info.Uses[id].(type) {
	case *types.Func:
		return obj.Origin().FullName()
	case *types.Builtin:
		return obj.Name()
	default:
		return ""
	}
}

// Resolves reports whether name, looked up at pos, resolves to the
// predeclared object of that name.
func (c *Context) Resolves(name string, pos token.Pos) bool {
	if !c.Typed() || c.Pkg == nil {
		return false
	}

	scope := c.Pkg.Scope().Innermost(pos)
	if scope == nil {
		scope = c.Pkg.Scope()
	}

	_, obj := scope.LookupParent(name, pos)

	return obj != nil && obj == types.Universe.Lookup(name)
}

// Representable reports whether the constant v fits the type t.
// Untyped types are replaced by their default type first.
func (c *Context) Representable(v constant.Value, t types.Type) bool {
	if v == nil || v.Kind() == constant.Unknown {
		return false
	}

	b, ok := types.Default(t).Underlying().(*types.Basic)
	if !ok {
		return true
	}

	info := b.Info()

	switch {
	case info&types.IsInteger != 0:
		return c.fitsInteger(v, b)
	case info&types.IsFloat != 0:
		return fitsFloat(v, b.Kind() == types.Float32)
	case info&types.IsComplex != 0:
		return v.Kind() == constant.Int || v.Kind() == constant.Float || v.Kind() == constant.Complex
	case info&types.IsBoolean != 0:
		return v.Kind() == constant.Bool
	case info&types.IsString != 0:
		return v.Kind() == constant.String
	default:
		return true
	}
}

func (c *Context) fitsInteger(v constant.Value, b *types.Basic) bool {
	iv := constant.ToInt(v)
	if iv.Kind() != constant.Int {
		return false
	}

	bits := 8 * c.sizes.Sizeof(b)

	if b.Info()&types.IsUnsigned != 0 {
		if constant.Sign(iv) < 0 {
			return false
		}

		return constant.BitLen(iv) <= int(bits)
	}

	limit := constant.Shift(constant.MakeInt64(1), token.SHL, uint(bits-1))
	if constant.Sign(iv) >= 0 {
		return constant.Compare(iv, token.LSS, limit)
	}

	return constant.Compare(constant.UnaryOp(token.SUB, iv, 0), token.LEQ, limit)
}

func fitsFloat(v constant.Value, single bool) bool {
	fv := constant.ToFloat(v)
	if fv.Kind() != constant.Float && fv.Kind() != constant.Int {
		return false
	}

	if single {
		f, _ := constant.Float32Val(fv)
		return !math.IsInf(float64(f), 0)
	}

	f, _ := constant.Float64Val(fv)

	return !math.IsInf(f, 0)
}
