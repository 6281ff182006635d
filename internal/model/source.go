package model

import (
	"go/ast"
	"go/token"
	"go/types"
)

// Path represents a file system path.
type Path string

// Tree is a parsed source file together with the optional type
// information produced for its package.
//
// Info and Pkg may be nil. Rules that need types are then skipped for the
// file and expression-shaped mutants are not produced.
type Tree struct {
	Path Path
	Fset *token.FileSet
	File *ast.File
	Info *types.Info
	Pkg  *types.Package
}

// Package is a loaded Go package ready for instrumentation.
type Package struct {
	ID        string
	Name      string
	PkgPath   string
	Module    string
	ModuleDir Path
	Trees     []Tree
}
