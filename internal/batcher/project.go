// Package batcher implements the ContextBatcher of spec §4.8: turning one
// TableAccessInfo into token-bounded ModificationContext batches via a
// framework-specific grouping strategy followed by a common greedy
// splitter.
package batcher

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// ProjectIndex indexes every parsed file for the cross-file lookups the
// grouping strategies need: import chasing, VO resolution by simple name,
// and method line spans for method-level token charging.
type ProjectIndex struct {
	asts              []*model.FileAst
	classByFile       map[string][]*model.ClassInfo
	classBySimpleName map[string][]*model.ClassInfo
	importsByFile     map[string][]string
}

// NewProjectIndex builds a ProjectIndex over every parsed file, Parsed or
// Degraded alike — a Degraded file still contributes its best-effort
// imports and class names.
func NewProjectIndex(asts []*model.FileAst) *ProjectIndex {
	idx := &ProjectIndex{
		asts:              asts,
		classByFile:       make(map[string][]*model.ClassInfo),
		classBySimpleName: make(map[string][]*model.ClassInfo),
		importsByFile:     make(map[string][]string),
	}
	for _, ast := range asts {
		idx.classByFile[ast.FilePath] = ast.Classes
		idx.importsByFile[ast.FilePath] = ast.Imports
		for _, c := range ast.Classes {
			idx.indexClass(c)
		}
	}
	return idx
}

func (idx *ProjectIndex) indexClass(c *model.ClassInfo) {
	idx.classBySimpleName[c.Name] = append(idx.classBySimpleName[c.Name], c)
	for _, inner := range c.InnerClasses {
		idx.indexClass(inner)
	}
}

// FilesForSimpleName returns every file declaring a class/interface/enum
// named name. Unlike the call graph's resolver, batching tolerates
// ambiguity: every candidate file is offered as a context file and the
// caller (usually an import filter) narrows it down.
func (idx *ProjectIndex) FilesForSimpleName(name string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, c := range idx.classBySimpleName[name] {
		if !seen[c.FilePath] {
			seen[c.FilePath] = true
			files = append(files, c.FilePath)
		}
	}
	return files
}

// AllFiles returns every file path the index was built from.
func (idx *ProjectIndex) AllFiles() []string {
	files := make([]string, 0, len(idx.asts))
	for _, a := range idx.asts {
		files = append(files, a.FilePath)
	}
	return files
}

// Imports returns the import list recorded for file.
func (idx *ProjectIndex) Imports(file string) []string {
	return idx.importsByFile[file]
}

// Classes returns the top-level classes declared in file.
func (idx *ProjectIndex) Classes(file string) []*model.ClassInfo {
	return idx.classByFile[file]
}

// ImportsSimpleName reports whether file's import list names simpleName
// as the last segment of one of its imports. Only the recorded import
// list is consulted: a same-package class used without an import
// statement is not reported.
func (idx *ProjectIndex) ImportsSimpleName(file, simpleName string) bool {
	for _, imp := range idx.importsByFile[file] {
		if lastSegment(imp) == simpleName {
			return true
		}
	}
	return false
}

func lastSegment(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// MethodsByName returns every method named methodName declared across
// file's top-level and inner classes, for method-level token charging
// (spec §4.8's BNK online variant).
func (idx *ProjectIndex) MethodsByName(file, methodName string) []model.MethodInfo {
	var out []model.MethodInfo
	for _, c := range idx.classByFile[file] {
		collectMethodsByName(c, methodName, &out)
	}
	return out
}

func collectMethodsByName(c *model.ClassInfo, methodName string, out *[]model.MethodInfo) {
	for _, m := range c.Methods {
		if m.Name == methodName {
			*out = append(*out, m)
		}
	}
	for _, inner := range c.InnerClasses {
		collectMethodsByName(inner, methodName, out)
	}
}

// ParameterAndReturnTypeNames collects the simple type names referenced
// by a method's return type and parameters, stripping generics and array
// decoration, for VO resolution (spec §4.8's MyBatis/Spring MVC strategy).
func ParameterAndReturnTypeNames(m model.MethodInfo) []string {
	names := []string{simpleTypeName(m.ReturnType)}
	for _, p := range m.Parameters {
		names = append(names, simpleTypeName(p.Type))
	}
	return dedupeNonEmpty(names)
}

func simpleTypeName(t string) string {
	// Strip generic args: List<UserVO> -> List, and reach for the
	// element type instead when it's a generic container.
	if i := strings.IndexByte(t, '<'); i >= 0 {
		inner := t[i+1:]
		if j := strings.LastIndexByte(inner, '>'); j >= 0 {
			inner = inner[:j]
		}
		return simpleTypeName(inner)
	}
	for len(t) > 2 && t[len(t)-2:] == "[]" {
		t = t[:len(t)-2]
	}
	return lastSegment(t)
}

func dedupeNonEmpty(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		if n == "" || n == "void" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
