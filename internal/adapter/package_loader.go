package adapter

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"log/slog"

	"golang.org/x/tools/go/packages"

	m "gooze.dev/pkg/schemata/internal/model"
)

// ErrPackageErrors is returned when a loaded package does not type-check.
var ErrPackageErrors = errors.New("packages contain errors")

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// PackageLoader loads Go packages together with their syntax trees and type
// information.
type PackageLoader interface {
	// Load resolves patterns relative to dir. Test files are not loaded.
	Load(ctx context.Context, dir m.Path, patterns ...string) ([]m.Package, error)
}

// LocalPackageLoader loads packages through the go command.
type LocalPackageLoader struct{}

// NewPackageLoader constructs a LocalPackageLoader.
func NewPackageLoader() *LocalPackageLoader {
	return &LocalPackageLoader{}
}

// Load implements PackageLoader.
func (l *LocalPackageLoader) Load(ctx context.Context, dir m.Path, patterns ...string) ([]m.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     string(dir),
		Fset:    token.NewFileSet(),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", patterns, err)
	}

	var errs []error

	out := make([]m.Package, 0, len(pkgs))

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			slog.Error("package error", "package", pkg.PkgPath, "error", e)
			errs = append(errs, e)
		}

		out = append(out, convertPackage(cfg.Fset, pkg))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrPackageErrors, errors.Join(errs...))
	}

	slog.Debug("loaded packages", "dir", dir, "patterns", patterns, "count", len(out))

	return out, nil
}

func convertPackage(fset *token.FileSet, pkg *packages.Package) m.Package {
	goFiles := make(map[string]struct{}, len(pkg.GoFiles))
	for _, f := range pkg.GoFiles {
		goFiles[f] = struct{}{}
	}

	out := m.Package{
		ID:      pkg.ID,
		Name:    pkg.Name,
		PkgPath: pkg.PkgPath,
	}

	if pkg.Module != nil {
		out.Module = pkg.Module.Path
		out.ModuleDir = m.Path(pkg.Module.Dir)
	}

	for _, file := range pkg.Syntax {
		name := fset.PositionFor(file.Package, false).Filename

		// cgo rewrites files into the build cache; only user files are kept.
		if _, ok := goFiles[name]; !ok {
			continue
		}

		out.Trees = append(out.Trees, m.Tree{
			Path: m.Path(name),
			Fset: fset,
			File: file,
			Info: pkg.TypesInfo,
			Pkg:  pkg.Types,
		})
	}

	return out
}
