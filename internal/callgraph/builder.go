package callgraph

import "github.com/applycrypto/engine/internal/model"

// Builder constructs a CallGraph from a set of parsed files.
type Builder struct {
	idx              *index
	classes          []*model.ClassInfo
	endpointStrategy EndpointStrategy
	layerTagger      *LayerTagger
}

// NewBuilder creates a Builder over every class declared across asts.
// Degraded (fallback-parsed) files still contribute their best-effort
// classes — they resolve as opaque leaves, per spec §4.6's failure
// semantics, never as a hard build failure.
func NewBuilder(asts []*model.FileAst, frameworkType string) *Builder {
	var classes []*model.ClassInfo
	for _, ast := range asts {
		classes = append(classes, ast.Classes...)
	}
	return &Builder{
		idx:              newIndex(classes),
		classes:          classes,
		endpointStrategy: NewEndpointStrategy(frameworkType),
		layerTagger:      DefaultLayerTagger(),
	}
}

// Build resolves every call site in every method across the indexed
// classes and detects endpoints, returning the assembled CallGraph.
func (b *Builder) Build() *CallGraph {
	var relations []model.CallRelation
	for _, class := range b.classes {
		b.collectRelations(class, &relations)
	}

	endpoints := b.endpointStrategy.DetectEndpoints(b.classes)
	return newCallGraph(relations, endpoints)
}

func (b *Builder) collectRelations(class *model.ClassInfo, out *[]model.CallRelation) {
	for i := range class.Methods {
		m := &class.Methods[i]
		for _, site := range m.MethodCalls {
			*out = append(*out, b.idx.resolveCallSite(m, class, site)...)
		}
	}
	for _, inner := range class.InnerClasses {
		b.collectRelations(inner, out)
	}
}

// Layer returns the architectural layer for c.
func (b *Builder) Layer(c *model.ClassInfo) model.Layer {
	return b.layerTagger.Tag(c)
}

// LayerTagger exposes the tagger so downstream components (table-access
// analysis, context batching) can tag files the builder never saw as a
// ClassInfo, e.g. framework config or non-Java resources.
func (b *Builder) LayerTagger() *LayerTagger {
	return b.layerTagger
}
