package javaast

import (
	"regexp"

	"github.com/applycrypto/engine/internal/model"
)

// Best-effort patterns for the regex fallback. They run against comment-
// stripped source and deliberately overmatch — a Degraded result only
// needs to give downstream components an opaque leaf to point at, never a
// fully resolved call graph.
var (
	packageRe = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)
	importRe  = regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.*]+)\s*;`)
	classRe   = regexp.MustCompile(`(?m)\b(?:public|private|protected)?\s*(?:static\s+|final\s+|abstract\s+)*\b(class|interface|enum)\s+(\w+)`)
	methodRe  = regexp.MustCompile(`(?m)\b(?:public|private|protected)\s+(?:static\s+|final\s+|synchronized\s+|abstract\s+)*[\w<>\[\],\s]+?\s+(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w,\s]+)?\s*\{`)
	fieldRe   = regexp.MustCompile(`(?m)\b(?:public|private|protected)\s+(?:static\s+|final\s+)*([\w<>\[\],.]+)\s+(\w+)\s*(?:=.*)?;`)
)

// fallbackParse returns a best-effort FileAst when the grammar fails,
// tagging the result as Degraded per spec §4.3 so callers cannot mistake
// it for a fully parsed file.
func fallbackParse(path string, source []byte, reason string) *model.FileAst {
	stripped := StripComments(string(source))

	ast := &model.FileAst{
		FilePath: path,
		Quality:  model.ParseQualityDegraded,
		Error:    reason,
	}

	if m := packageRe.FindStringSubmatch(stripped); m != nil {
		ast.Package = m[1]
	}
	for _, m := range importRe.FindAllStringSubmatch(stripped, -1) {
		ast.Imports = append(ast.Imports, m[1])
	}

	classMatches := classRe.FindAllStringSubmatchIndex(stripped, -1)
	for i, loc := range classMatches {
		kind := stripped[loc[2]:loc[3]]
		name := stripped[loc[4]:loc[5]]

		end := len(stripped)
		if i+1 < len(classMatches) {
			end = classMatches[i+1][0]
		}
		body := stripped[loc[1]:end]

		class := &model.ClassInfo{
			Name:        name,
			Package:     ast.Package,
			FilePath:    path,
			IsInterface: kind == "interface",
		}

		for _, fm := range fieldRe.FindAllStringSubmatch(body, -1) {
			class.Fields = append(class.Fields, model.FieldInfo{Type: fm[1], Name: fm[2]})
		}
		for _, mm := range methodRe.FindAllStringSubmatch(body, -1) {
			class.Methods = append(class.Methods, model.MethodInfo{
				Name:      mm[1],
				ClassName: name,
				FilePath:  path,
			})
		}

		ast.Classes = append(ast.Classes, class)
	}

	return ast
}
