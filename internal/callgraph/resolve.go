package callgraph

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

const unresolvedQualifier = "<unresolved>"

// resolveCallSite applies the five rules of spec §4.6 in order and returns
// every CallRelation the site produces. A site normally produces exactly
// one relation; the interface/impl pairing rule can produce two (interface
// declaration plus the authoritative Impl body).
func (idx *index) resolveCallSite(caller *model.MethodInfo, class *model.ClassInfo, site model.CallSite) []model.CallRelation {
	base := model.CallRelation{
		Caller:     caller.QualifiedName(),
		CallerFile: caller.FilePath,
		Line:       site.Line,
	}

	receiver := strings.TrimPrefix(site.Receiver, "this.")

	switch {
	case receiver == "" || receiver == "this":
		if m, c := idx.resolveOnChain(class, site.MethodName); m != nil {
			return idx.relationsFor(base, m, c)
		}

	default:
		if fieldType, ok := fieldType(class, receiver); ok {
			if m, c := idx.resolveOnType(fieldType, site.MethodName); m != nil {
				return idx.relationsFor(base, m, c)
			}
		} else if localType, ok := caller.LocalVars[receiver]; ok {
			if m, c := idx.resolveOnType(localType, site.MethodName); m != nil {
				return idx.relationsFor(base, m, c)
			}
		} else if target := idx.resolveType(receiver); target != nil {
			if m := findMethodByName(target, site.MethodName); m != nil {
				return idx.relationsFor(base, m, target)
			}
		}
	}

	unresolved := base
	unresolved.Callee = unresolvedQualifier + ":" + receiver + "." + site.MethodName
	unresolved.Resolved = false
	return []model.CallRelation{unresolved}
}

// resolveOnChain implements rule 1: search the owning class, then its
// ancestors, preferring the most-derived match. Arity is not tracked at
// call sites (the parser records textual calls, not resolved arguments),
// so matching is by name only within the chain.
func (idx *index) resolveOnChain(class *model.ClassInfo, methodName string) (*model.MethodInfo, *model.ClassInfo) {
	for _, c := range idx.ancestorChain(class) {
		if m := findMethodByName(c, methodName); m != nil {
			return m, c
		}
	}
	return nil, nil
}

// resolveOnType implements rules 2 and 3: resolve methodName against the
// class named by typeName, applying interface/impl pairing (rule 5) when
// typeName resolves to an interface with no concrete body.
func (idx *index) resolveOnType(typeName, methodName string) (*model.MethodInfo, *model.ClassInfo) {
	target := idx.resolveType(typeName)
	if target == nil {
		return nil, nil
	}

	if !target.IsInterface {
		if m := findMethodByName(target, methodName); m != nil {
			return m, target
		}
		return nil, nil
	}

	// Interface receiver: prefer the paired Impl's method body as the
	// authoritative resolution for descent (spec §4.6 rule 5).
	for _, implName := range candidateImplNames(target.Name) {
		for _, implClass := range idx.bySimpleName[implName] {
			if m := findMethodByName(implClass, methodName); m != nil {
				return m, implClass
			}
		}
	}

	// No Impl found: fall back to the interface's own (bodiless) method
	// declaration so the call still resolves to something joinable.
	if m := findMethodByName(target, methodName); m != nil {
		return m, target
	}
	return nil, nil
}

// relationsFor builds the CallRelation(s) for a resolved (method, class)
// pair. When the resolved class is an interface with a reachable Impl
// sibling, it emits both the interface-declaration edge and the Impl edge,
// per spec §4.6 rule 5 ("resolves to both").
func (idx *index) relationsFor(base model.CallRelation, m *model.MethodInfo, c *model.ClassInfo) []model.CallRelation {
	primary := base
	primary.Callee = m.QualifiedName()
	primary.CalleeFile = m.FilePath
	primary.Resolved = true

	if !c.IsInterface {
		return []model.CallRelation{primary}
	}

	// c is the interface; see if an Impl sibling also declares the method.
	for _, implName := range candidateImplNames(c.Name) {
		for _, implClass := range idx.bySimpleName[implName] {
			if implMethod := findMethodByName(implClass, m.Name); implMethod != nil {
				implRelation := base
				implRelation.Callee = implMethod.QualifiedName()
				implRelation.CalleeFile = implMethod.FilePath
				implRelation.Resolved = true
				return []model.CallRelation{primary, implRelation}
			}
		}
	}

	return []model.CallRelation{primary}
}

func fieldType(class *model.ClassInfo, fieldName string) (string, bool) {
	for _, f := range class.Fields {
		if f.Name == fieldName {
			return f.Type, true
		}
	}
	return "", false
}
