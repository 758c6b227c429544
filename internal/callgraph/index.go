// Package callgraph builds the cross-file call graph described in
// spec §4.6: it resolves every textual CallSite captured by the parser
// into a qualified callee, pairs interfaces with their implementations
// where no static type information survives, detects web endpoints, tags
// architectural layers, and materializes per-endpoint call trees.
package callgraph

import "github.com/applycrypto/engine/internal/model"

// index indexes every parsed class for receiver-type resolution.
type index struct {
	bySimpleName map[string][]*model.ClassInfo
	byFQN        map[string]*model.ClassInfo
}

func newIndex(classes []*model.ClassInfo) *index {
	idx := &index{
		bySimpleName: make(map[string][]*model.ClassInfo),
		byFQN:        make(map[string]*model.ClassInfo),
	}
	for _, c := range classes {
		idx.add(c)
	}
	return idx
}

// add registers c and recurses into its inner classes, matching how Java
// nests types but keeping the index flat for lookup.
func (idx *index) add(c *model.ClassInfo) {
	idx.bySimpleName[c.Name] = append(idx.bySimpleName[c.Name], c)
	idx.byFQN[c.FullyQualifiedName()] = c
	for _, inner := range c.InnerClasses {
		idx.add(inner)
	}
}

// resolveType returns the best-guess ClassInfo for a declared type name,
// stripping generic parameters and array brackets. Ambiguous simple names
// (same class name in more than one package) fall back to the first
// registered candidate — an accepted approximation given no import
// resolution is performed against a full classpath.
func (idx *index) resolveType(typeName string) *model.ClassInfo {
	name := stripTypeDecoration(typeName)
	if name == "" {
		return nil
	}
	if c, ok := idx.byFQN[name]; ok {
		return c
	}
	if candidates, ok := idx.bySimpleName[name]; ok && len(candidates) > 0 {
		return candidates[0]
	}
	return nil
}

func stripTypeDecoration(typeName string) string {
	name := typeName
	for i, r := range name {
		if r == '<' {
			name = name[:i]
			break
		}
	}
	for len(name) > 0 && (name[len(name)-1] == ']' || name[len(name)-1] == '[') {
		name = name[:len(name)-1]
	}
	return name
}

// findMethodByName finds the first method on c matching name regardless of
// arity, used when the call site's argument count cannot be determined
// reliably (e.g. varargs, overload resolution ambiguity).
func findMethodByName(c *model.ClassInfo, name string) *model.MethodInfo {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// ancestorChain walks c, then its superclass chain (most-derived first),
// resolving each superclass name through idx.
func (idx *index) ancestorChain(c *model.ClassInfo) []*model.ClassInfo {
	chain := []*model.ClassInfo{c}
	seen := map[string]bool{c.FullyQualifiedName(): true}
	cur := c
	for cur.Superclass != "" {
		next := idx.resolveType(cur.Superclass)
		if next == nil || seen[next.FullyQualifiedName()] {
			break
		}
		seen[next.FullyQualifiedName()] = true
		chain = append(chain, next)
		cur = next
	}
	return chain
}
