package domain

import (
	"context"
	"fmt"
	"go/ast"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	m "gooze.dev/pkg/schemata/internal/model"
)

// plan is the instrumented form of every selected file of one module.
type plan struct {
	module        string
	moduleDir     m.Path
	runtimeImport string
	files         []plannedFile
}

type plannedFile struct {
	// tree.Path is relative to the module directory
	tree    m.Tree
	abs     m.Path
	file    *ast.File
	mutants []m.Mutant
	alias   string
}

func (p plan) records() []m.Record {
	var records []m.Record
	for _, f := range p.files {
		records = append(records, Records(f.tree.Fset, f.mutants)...)
	}

	return records
}

// plan loads the packages and mutates their files in a stable order. One
// orchestrator serves the whole session so ids are unique across files.
func (w *workflow) plan(ctx context.Context, args ListArgs) (plan, error) {
	exclude, err := compilePatterns(args.Exclude)
	if err != nil {
		return plan{}, err
	}

	pkgs, err := w.Load(ctx, "", patterns(args.Paths)...)
	if err != nil {
		return plan{}, fmt.Errorf("load packages: %w", err)
	}

	module, moduleDir, err := singleModule(pkgs)
	if err != nil {
		return plan{}, err
	}

	slices.SortFunc(pkgs, func(a, b m.Package) int { return strings.Compare(a.PkgPath, b.PkgPath) })

	p := plan{
		module:        module,
		moduleDir:     moduleDir,
		runtimeImport: module + "/" + runtimeDir,
	}

	o := NewOrchestrator(WithMutationTypes(args.Types...), WithRuntimeImport(p.runtimeImport))

	for _, pkg := range pkgs {
		for _, tree := range pkg.Trees {
			if err := ctx.Err(); err != nil {
				return plan{}, err
			}

			rel, err := w.RelPath(moduleDir, tree.Path)
			if err != nil {
				return plan{}, fmt.Errorf("relative path of %s: %w", tree.Path, err)
			}

			if reason, skip := skipFile(tree.File, rel, exclude); skip {
				slog.Debug("Skipping file", "path", rel, "reason", reason)
				continue
			}

			abs := tree.Path
			tree.Path = rel

			out, err := o.Mutate(tree)
			if err != nil {
				return plan{}, err
			}

			batch := o.CurrentBatch()
			if len(batch) == 0 {
				continue
			}

			p.files = append(p.files, plannedFile{
				tree:    tree,
				abs:     abs,
				file:    out,
				mutants: batch,
				alias:   RuntimeAlias(out, p.runtimeImport),
			})
		}
	}

	return p, nil
}

func patterns(paths []m.Path) []string {
	if len(paths) == 0 {
		return []string{"./..."}
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, string(p))
	}

	return out
}

func singleModule(pkgs []m.Package) (string, m.Path, error) {
	var (
		module string
		dir    m.Path
	)

	for _, pkg := range pkgs {
		if pkg.Module == "" {
			continue
		}

		if module != "" && pkg.Module != module {
			return "", "", fmt.Errorf("%w: %s and %s", ErrMultipleModules, module, pkg.Module)
		}

		module, dir = pkg.Module, pkg.ModuleDir
	}

	if module == "" {
		return "", "", ErrNoModule
	}

	return module, dir, nil
}

func skipFile(file *ast.File, rel m.Path, exclude []*regexp.Regexp) (string, bool) {
	if strings.HasSuffix(string(rel), "_test.go") {
		return "test file", true
	}

	if ast.IsGenerated(file) {
		return "generated", true
	}

	for _, re := range exclude {
		if re.MatchString(string(rel)) {
			return "excluded by " + re.String(), true
		}
	}

	return "", false
}
