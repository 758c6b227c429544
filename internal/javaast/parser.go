// Package javaast turns Java source into the model.FileAst structure used
// by every downstream component (call-graph builder, table-access
// analyzer, context batcher). Parsing is tree-sitter first, with a
// regex-based fallback for files the grammar cannot handle — per spec
// §4.3, the two are kept as a closed sum type (model.ParseQuality) so
// nothing downstream can mistake a best-effort fallback result for a
// fully resolved one.
package javaast

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/applycrypto/engine/internal/model"
)

// Parser parses Java source files into model.FileAst values.
type Parser struct {
	language *sitter.Language
}

// New creates a Parser backed by the tree-sitter Java grammar.
func New() *Parser {
	return &Parser{language: sitter.NewLanguage(java.Language())}
}

// ParseFile reads and parses the file at path. It never returns an error
// for a parse failure — that is represented in the returned FileAst's
// Quality/Error fields per spec §4.3's failure-mode contract. It returns
// an error only for I/O failures.
func (p *Parser) ParseFile(path string) (*model.FileAst, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(path, source), nil
}

// Parse parses in-memory Java source already associated with path.
func (p *Parser) Parse(path string, source []byte) *model.FileAst {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fallbackParse(path, source, "tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// The grammar recovered something, but not reliably enough to trust
		// call-site extraction; degrade to the fallback so callers never see
		// a partially-populated "parsed" result.
		return fallbackParse(path, source, "parse tree contains error nodes")
	}

	ast := &model.FileAst{
		FilePath: path,
		Quality:  model.ParseQualityParsed,
	}

	walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "package_declaration":
			ast.Package = extractPackageName(n, source)
			return false
		case "import_declaration":
			if imp := extractImport(n, source); imp != "" {
				ast.Imports = append(ast.Imports, imp)
			}
			return false
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			class := p.extractClass(n, source, ast.Package, path, n.Kind())
			if class != nil {
				ast.Classes = append(ast.Classes, class)
			}
			return false
		}
		return true
	})

	return ast
}

func extractPackageName(n *sitter.Node, source []byte) string {
	name := findChildByType(n, "scoped_identifier")
	if name == nil {
		name = findChildByType(n, "identifier")
	}
	return nodeText(name, source)
}

func extractImport(n *sitter.Node, source []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "scoped_identifier", "identifier":
			return nodeText(child, source)
		}
	}
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(nodeText(n, source)), "import "), ";")
}

// extractClass handles class/interface/enum/record declarations, including
// nested classes found inside the body.
func (p *Parser) extractClass(n *sitter.Node, source []byte, pkg, filePath, kind string) *model.ClassInfo {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	class := &model.ClassInfo{
		Name:           nodeText(nameNode, source),
		Package:        pkg,
		FilePath:       filePath,
		IsInterface:    kind == "interface_declaration",
		AccessModifier: extractAccessModifier(n, source),
		Annotations:    extractAnnotations(n, source),
		StartLine:      int(n.StartPosition().Row) + 1,
		EndLine:        int(n.EndPosition().Row) + 1,
	}

	if super := n.ChildByFieldName("superclass"); super != nil {
		class.Superclass = strings.TrimPrefix(strings.TrimSpace(nodeText(super, source)), "extends ")
	}
	if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
		class.Interfaces = extractTypeList(ifaces, source)
	}
	if kind == "interface_declaration" {
		// interface_declaration's extends list is its own field named
		// "interfaces" in the grammar but semantically a superinterface list.
		if ext := findChildByType(n, "extends_interfaces"); ext != nil {
			class.Interfaces = append(class.Interfaces, extractTypeList(ext, source)...)
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return class
	}

	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(uint(i))
		switch member.Kind() {
		case "field_declaration":
			class.Fields = append(class.Fields, extractFields(member, source)...)
		case "method_declaration", "constructor_declaration":
			m := p.extractMethod(member, source, class.Name, filePath)
			if m != nil {
				class.Methods = append(class.Methods, *m)
			}
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			inner := p.extractClass(member, source, pkg, filePath, member.Kind())
			if inner != nil {
				class.InnerClasses = append(class.InnerClasses, inner)
			}
		}
	}

	return class
}

func extractTypeList(n *sitter.Node, source []byte) []string {
	var out []string
	walk(n, func(c *sitter.Node) bool {
		if c.Kind() == "type_identifier" || c.Kind() == "scoped_type_identifier" || c.Kind() == "generic_type" {
			out = append(out, nodeText(c, source))
			return false
		}
		return true
	})
	return out
}

func extractFields(n *sitter.Node, source []byte) []model.FieldInfo {
	typeNode := n.ChildByFieldName("type")
	typeText := nodeText(typeNode, source)
	mods := modifierSet(n, source)

	var fields []model.FieldInfo
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(uint(i))
		if c.Kind() != "variable_declarator" {
			continue
		}
		nameNode := c.ChildByFieldName("name")
		fields = append(fields, model.FieldInfo{
			Name:              nodeText(nameNode, source),
			Type:              typeText,
			Annotations:       extractAnnotations(n, source),
			AccessModifier:    accessModifierFromSet(mods),
			IsStatic:          mods["static"],
			IsFinal:           mods["final"],
			InitializerAbsent: c.ChildByFieldName("value") == nil,
			StartLine:         int(n.StartPosition().Row) + 1,
		})
	}
	return fields
}

func (p *Parser) extractMethod(n *sitter.Node, source []byte, className, filePath string) *model.MethodInfo {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		if n.Kind() == "constructor_declaration" {
			nameNode = n.ChildByFieldName("name") // constructors also carry a "name" field in this grammar
		}
		if nameNode == nil {
			return nil
		}
	}

	mods := modifierSet(n, source)
	method := &model.MethodInfo{
		Name:           nodeText(nameNode, source),
		ClassName:      className,
		FilePath:       filePath,
		AccessModifier: accessModifierFromSet(mods),
		IsStatic:       mods["static"],
		IsAbstract:     mods["abstract"],
		Annotations:    extractAnnotations(n, source),
		LineNumber:     int(n.StartPosition().Row) + 1,
		EndLineNumber:  int(n.EndPosition().Row) + 1,
	}

	if rt := n.ChildByFieldName("type"); rt != nil {
		method.ReturnType = nodeText(rt, source)
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		method.Parameters = extractParameters(params, source)
	}

	if throws := findChildByType(n, "throws"); throws != nil {
		method.Exceptions = extractTypeList(throws, source)
	}

	if body := n.ChildByFieldName("body"); body != nil {
		method.MethodCalls = extractCallSites(body, source)
		method.LocalVars = extractLocalVars(body, source)
	} else {
		// No body: an interface method or an abstract declaration. Either
		// way there is nothing to descend into, so callers must treat it
		// the same as an explicit "abstract" modifier.
		method.IsAbstract = true
	}

	return method
}

// extractLocalVars walks a method body for local_variable_declaration and
// enhanced-for-loop/catch-clause declarations, recording each variable's
// declared type for receiver-type resolution (spec §4.6 rule 3).
func extractLocalVars(body *sitter.Node, source []byte) map[string]string {
	vars := make(map[string]string)
	walk(body, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "local_variable_declaration":
			typeText := nodeText(n.ChildByFieldName("type"), source)
			for i := 0; i < int(n.ChildCount()); i++ {
				c := n.Child(uint(i))
				if c.Kind() == "variable_declarator" {
					name := nodeText(c.ChildByFieldName("name"), source)
					if name != "" {
						vars[name] = typeText
					}
				}
			}
		case "enhanced_for_statement":
			typeText := nodeText(n.ChildByFieldName("type"), source)
			name := nodeText(n.ChildByFieldName("name"), source)
			if name != "" {
				vars[name] = typeText
			}
		case "catch_formal_parameter":
			typeText := nodeText(findChildByType(n, "catch_type"), source)
			name := nodeText(n.ChildByFieldName("name"), source)
			if name != "" {
				vars[name] = typeText
			}
		}
		return true
	})
	return vars
}

func extractParameters(n *sitter.Node, source []byte) []model.Parameter {
	var params []model.Parameter
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(uint(i))
		switch c.Kind() {
		case "formal_parameter":
			params = append(params, model.Parameter{
				Name: nodeText(c.ChildByFieldName("name"), source),
				Type: nodeText(c.ChildByFieldName("type"), source),
			})
		case "spread_parameter":
			name := findChildByType(c, "identifier")
			params = append(params, model.Parameter{
				Name:      nodeText(name, source),
				Type:      nodeText(c.ChildByFieldName("type"), source),
				IsVarargs: true,
			})
		}
	}
	return params
}

// extractCallSites walks a method body and collects every method_invocation
// node, textualizing the receiver per spec §4.3 ("this."/unqualified
// resolved later" — resolution happens in the call-graph builder, not here).
func extractCallSites(body *sitter.Node, source []byte) []model.CallSite {
	var sites []model.CallSite
	walk(body, func(n *sitter.Node) bool {
		if n.Kind() != "method_invocation" {
			return true
		}
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return true
		}
		receiver := ""
		if obj := n.ChildByFieldName("object"); obj != nil {
			receiver = nodeText(obj, source)
		}
		sites = append(sites, model.CallSite{
			Receiver:   receiver,
			MethodName: nodeText(nameNode, source),
			Line:       int(n.StartPosition().Row) + 1,
		})
		return true
	})
	return sites
}

func extractAnnotations(n *sitter.Node, source []byte) []model.Annotation {
	var annos []model.Annotation
	modifiers := findChildByType(n, "modifiers")
	if modifiers == nil {
		return annos
	}
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		c := modifiers.Child(uint(i))
		switch c.Kind() {
		case "marker_annotation":
			annos = append(annos, model.Annotation{Name: annotationName(c, source)})
		case "annotation":
			a := model.Annotation{Name: annotationName(c, source)}
			if args := c.ChildByFieldName("arguments"); args != nil {
				a.Attributes, a.Value = extractAnnotationArgs(args, source)
			}
			annos = append(annos, a)
		}
	}
	return annos
}

func annotationName(n *sitter.Node, source []byte) string {
	name := n.ChildByFieldName("name")
	return nodeText(name, source)
}

func extractAnnotationArgs(args *sitter.Node, source []byte) (map[string]string, string) {
	attrs := make(map[string]string)
	var single string
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(uint(i))
		switch c.Kind() {
		case "element_value_pair":
			key := nodeText(c.ChildByFieldName("key"), source)
			val := nodeText(c.ChildByFieldName("value"), source)
			attrs[key] = strings.Trim(val, "\"")
		case "string_literal":
			single = strings.Trim(nodeText(c, source), "\"")
		}
	}
	if len(attrs) == 0 {
		return nil, single
	}
	return attrs, single
}

func modifierSet(n *sitter.Node, source []byte) map[string]bool {
	set := make(map[string]bool)
	modifiers := findChildByType(n, "modifiers")
	if modifiers == nil {
		return set
	}
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		c := modifiers.Child(uint(i))
		switch c.Kind() {
		case "public", "private", "protected", "static", "final", "abstract":
			set[c.Kind()] = true
		}
	}
	return set
}

func extractAccessModifier(n *sitter.Node, source []byte) model.AccessModifier {
	return accessModifierFromSet(modifierSet(n, source))
}

func accessModifierFromSet(mods map[string]bool) model.AccessModifier {
	switch {
	case mods["public"]:
		return model.AccessPublic
	case mods["protected"]:
		return model.AccessProtected
	case mods["private"]:
		return model.AccessPrivate
	default:
		return model.AccessPackage
	}
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(uint(i)), visit)
	}
}

func findChildByType(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(uint(i))
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}
