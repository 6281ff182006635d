package domain

import (
	"go/ast"
	"go/token"
	"strings"

	m "gooze.dev/pkg/schemata/internal/model"
)

const ignoreDirective = "schemata:ignore"

type ignoreRule struct {
	all   bool
	names map[m.MutationType]struct{}
}

func (r ignoreRule) ignores(mutationType m.MutationType) bool {
	if r.all {
		return true
	}

	_, ok := r.names[mutationType]

	return ok
}

func (r ignoreRule) empty() bool {
	return !r.all && len(r.names) == 0
}

func mergeIgnoreRule(dst *ignoreRule, src ignoreRule) {
	if src.all {
		dst.all = true
		dst.names = nil

		return
	}

	if dst.all || len(src.names) == 0 {
		return
	}

	if dst.names == nil {
		dst.names = make(map[m.MutationType]struct{}, len(src.names))
	}

	for name := range src.names {
		dst.names[name] = struct{}{}
	}
}

// parseIgnoreDirective reads "//schemata:ignore" optionally followed by a
// comma separated list of mutation types.
func parseIgnoreDirective(commentText string) (ignoreRule, bool) {
	s := strings.TrimSpace(commentText)
	if strings.HasPrefix(s, "//") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "//"))
	} else if strings.HasPrefix(s, "/*") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "/*"))
		s = strings.TrimSpace(strings.TrimSuffix(s, "*/"))
	}

	rest, ok := strings.CutPrefix(s, ignoreDirective)
	if !ok {
		return ignoreRule{}, false
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return ignoreRule{all: true}, true
	}

	parts := strings.Split(rest, ",")
	rule := ignoreRule{names: make(map[m.MutationType]struct{}, len(parts))}

	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}

		rule.names[m.MutationType(name)] = struct{}{}
	}

	if len(rule.names) == 0 {
		rule.all = true
		rule.names = nil
	}

	return rule, true
}

// ignoreIndex holds the ignore directives of one file.
type ignoreIndex struct {
	file      ignoreRule
	funcByPos map[token.Pos]ignoreRule
	line      map[int]ignoreRule
}

func buildIgnoreIndex(file *ast.File, fset *token.FileSet) ignoreIndex {
	funcByPos, funcDocGroups := buildFuncIgnoreRules(file)

	return ignoreIndex{
		file:      buildFileIgnoreRule(file),
		funcByPos: funcByPos,
		line:      buildLineIgnoreRules(file, fset, funcDocGroups),
	}
}

// suppressed reports whether a mutation of the given type at pos is
// switched off by a file, function or line directive.
func (idx ignoreIndex) suppressed(fn ignoreRule, fset *token.FileSet, pos token.Pos, mutationType m.MutationType) bool {
	if idx.file.ignores(mutationType) || fn.ignores(mutationType) {
		return true
	}

	rule, ok := idx.line[fset.PositionFor(pos, false).Line]

	return ok && rule.ignores(mutationType)
}

func buildFuncIgnoreRules(file *ast.File) (map[token.Pos]ignoreRule, map[*ast.CommentGroup]struct{}) {
	funcByPos := make(map[token.Pos]ignoreRule)
	funcDocGroups := map[*ast.CommentGroup]struct{}{}

	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Doc == nil {
			continue
		}

		funcDocGroups[fd.Doc] = struct{}{}

		var rule ignoreRule

		for _, c := range fd.Doc.List {
			r, ok := parseIgnoreDirective(c.Text)
			if !ok {
				continue
			}

			mergeIgnoreRule(&rule, r)
		}

		if !rule.empty() {
			funcByPos[fd.Pos()] = rule
		}
	}

	return funcByPos, funcDocGroups
}

func buildFileIgnoreRule(file *ast.File) ignoreRule {
	var rule ignoreRule

	for _, group := range file.Comments {
		if group.End() >= file.Package {
			continue
		}

		for _, c := range group.List {
			r, ok := parseIgnoreDirective(c.Text)
			if !ok {
				continue
			}

			mergeIgnoreRule(&rule, r)
		}
	}

	return rule
}

// buildLineIgnoreRules maps each directive to the line it governs: its own
// line when it trails code, the next line when it stands alone.
func buildLineIgnoreRules(file *ast.File, fset *token.FileSet, funcDocGroups map[*ast.CommentGroup]struct{}) map[int]ignoreRule {
	lineRules := make(map[int]ignoreRule)
	codeBefore := codeColumns(file, fset)

	for _, group := range file.Comments {
		if group.End() < file.Package {
			continue
		}

		if _, ok := funcDocGroups[group]; ok {
			continue
		}

		for _, c := range group.List {
			r, ok := parseIgnoreDirective(c.Text)
			if !ok {
				continue
			}

			pos := fset.PositionFor(c.Slash, false)
			if pos.Line <= 0 {
				continue
			}

			targetLine := pos.Line
			if col, ok := codeBefore[pos.Line]; !ok || col > pos.Column {
				targetLine = pos.Line + 1
			}

			current := lineRules[targetLine]
			mergeIgnoreRule(&current, r)
			lineRules[targetLine] = current
		}
	}

	return lineRules
}

// codeColumns returns, per line, the smallest column at which a syntax
// node starts or ends.
func codeColumns(file *ast.File, fset *token.FileSet) map[int]int {
	cols := make(map[int]int)

	record := func(p token.Pos) {
		if !p.IsValid() {
			return
		}

		pos := fset.PositionFor(p, false)
		if col, ok := cols[pos.Line]; !ok || pos.Column < col {
			cols[pos.Line] = pos.Column
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		switch n.(type) {
		case nil, *ast.CommentGroup, *ast.Comment, *ast.File:
			return true
		}

		record(n.Pos())
		record(n.End() - 1)

		return true
	})

	return cols
}
