package domain

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"

	"gooze.dev/pkg/schemata/internal/domain/mutagens"
)

// speller writes types as source expressions valid at a given position of
// the file being mutated.
type speller struct {
	ctx *mutagens.Context
	// local import names by package path
	names map[string]string
}

func newSpeller(ctx *mutagens.Context, file *ast.File) *speller {
	s := &speller{ctx: ctx, names: make(map[string]string)}

	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		switch {
		case spec.Name != nil && (spec.Name.Name == "_" || spec.Name.Name == "."):
			continue
		case spec.Name != nil:
			s.names[path] = spec.Name.Name
		case ctx.Typed():
			if pn, ok := ctx.Info.Implicits[spec].(*types.PkgName); ok {
				s.names[path] = pn.Name()
			}
		}
	}

	return s
}

// spell returns the type of e written as an expression, or false when the
// type cannot be named at the position of e.
func (s *speller) spell(e ast.Expr) (ast.Expr, bool) {
	t := s.ctx.TypeOf(e)
	if t == nil {
		return nil, false
	}

	if b, ok := t.(*types.Basic); ok && b.Info()&types.IsUntyped != 0 {
		if b.Kind() == types.UntypedNil {
			return nil, false
		}

		t = types.Default(t)
	}

	if !s.spellable(t, e.Pos(), 0) {
		return nil, false
	}

	expr, err := parser.ParseExpr(types.TypeString(t, s.qualifier))
	if err != nil {
		return nil, false
	}

	return expr, true
}

func (s *speller) qualifier(pkg *types.Package) string {
	if pkg == s.ctx.Pkg {
		return ""
	}

	return s.names[pkg.Path()]
}

const maxSpellDepth = 32

func (s *speller) spellable(t types.Type, pos token.Pos, depth int) bool {
	if depth > maxSpellDepth {
		return false
	}

	depth++

	switch t := t.(type) {
	case *types.Basic:
		switch t.Kind() {
		case types.Invalid:
			return false
		case types.UnsafePointer:
			return s.importedAs("unsafe", "unsafe", pos)
		}

		return t.Info()&types.IsUntyped == 0 && s.universal(t.Name(), pos)
	case *types.Pointer:
		return s.spellable(t.Elem(), pos, depth)
	case *types.Slice:
		return s.spellable(t.Elem(), pos, depth)
	case *types.Array:
		return s.spellable(t.Elem(), pos, depth)
	case *types.Chan:
		return s.spellable(t.Elem(), pos, depth)
	case *types.Map:
		return s.spellable(t.Key(), pos, depth) && s.spellable(t.Elem(), pos, depth)
	case *types.Signature:
		return s.tupleSpellable(t.Params(), pos, depth) && s.tupleSpellable(t.Results(), pos, depth)
	case *types.Struct:
		for i := range t.NumFields() {
			f := t.Field(i)
			if !f.Exported() && f.Pkg() != s.ctx.Pkg {
				return false
			}

			if !s.spellable(f.Type(), pos, depth) {
				return false
			}
		}

		return true
	case *types.Interface:
		for i := range t.NumExplicitMethods() {
			fn := t.ExplicitMethod(i)
			if !fn.Exported() && fn.Pkg() != s.ctx.Pkg {
				return false
			}

			if !s.spellable(fn.Type(), pos, depth) {
				return false
			}
		}

		for i := range t.NumEmbeddeds() {
			if !s.spellable(t.EmbeddedType(i), pos, depth) {
				return false
			}
		}

		return true
	case *types.Named:
		return s.objectSpellable(t.Obj(), pos) && s.argsSpellable(t.TypeArgs(), pos, depth)
	case *types.Alias:
		return s.objectSpellable(t.Obj(), pos) && s.argsSpellable(t.TypeArgs(), pos, depth)
	case *types.TypeParam:
		return s.resolvesTo(t.Obj().Name(), t.Obj(), pos)
	default:
		return false
	}
}

func (s *speller) tupleSpellable(tuple *types.Tuple, pos token.Pos, depth int) bool {
	for i := range tuple.Len() {
		if !s.spellable(tuple.At(i).Type(), pos, depth) {
			return false
		}
	}

	return true
}

func (s *speller) argsSpellable(args *types.TypeList, pos token.Pos, depth int) bool {
	for i := range args.Len() {
		if !s.spellable(args.At(i), pos, depth) {
			return false
		}
	}

	return true
}

// objectSpellable reports whether the type name obj can be written at pos.
func (s *speller) objectSpellable(obj *types.TypeName, pos token.Pos) bool {
	switch pkg := obj.Pkg(); {
	case pkg == nil:
		return s.universal(obj.Name(), pos)
	case pkg == s.ctx.Pkg:
		return s.resolvesTo(obj.Name(), obj, pos)
	default:
		name, ok := s.names[pkg.Path()]

		return ok && obj.Exported() && s.importedAs(pkg.Path(), name, pos)
	}
}

// importedAs reports whether name refers to the import of path at pos.
func (s *speller) importedAs(path, name string, pos token.Pos) bool {
	if s.names[path] != name {
		return false
	}

	obj := s.lookup(name, pos)
	if obj == nil {
		// Without scope information trust the import table.
		return s.ctx.Pkg == nil
	}

	pn, ok := obj.(*types.PkgName)

	return ok && pn.Imported().Path() == path
}

func (s *speller) universal(name string, pos token.Pos) bool {
	return s.resolvesTo(name, types.Universe.Lookup(name), pos)
}

func (s *speller) resolvesTo(name string, want types.Object, pos token.Pos) bool {
	if s.ctx.Pkg == nil {
		return true
	}

	return s.lookup(name, pos) == want
}

func (s *speller) lookup(name string, pos token.Pos) types.Object {
	if s.ctx.Pkg == nil {
		return nil
	}

	scope := s.ctx.Pkg.Scope().Innermost(pos)
	if scope == nil {
		scope = s.ctx.Pkg.Scope()
	}

	_, obj := scope.LookupParent(name, pos)

	return obj
}
