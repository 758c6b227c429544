package callgraph

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// LayerTagger assigns an architectural Layer to a class, by path segment
// or class-name suffix, per spec §4.6's default rule set.
type LayerTagger struct {
	suffixRules map[string]model.Layer
}

// DefaultLayerTagger returns the tagger for the default naming
// conventions named in spec §4.6.
func DefaultLayerTagger() *LayerTagger {
	return &LayerTagger{
		suffixRules: map[string]model.Layer{
			"Controller": model.LayerController,
			"CTL":        model.LayerController,
			"Service":    model.LayerService,
			"SVC":        model.LayerService,
			"SVCImpl":    model.LayerServiceImpl,
			"BIZ":        model.LayerServiceImpl,
			"DAO":        model.LayerRepository,
			"Repository": model.LayerRepository,
			"DQM":        model.LayerRepository,
			"DEM":        model.LayerRepository,
			"Mapper":     model.LayerRepository,
			"VO":         model.LayerValueObject,
			"DVO":        model.LayerValueObject,
			"BVO":        model.LayerValueObject,
			"SVO":        model.LayerValueObject,
			"DTO":        model.LayerValueObject,
			"Entity":     model.LayerValueObject,
		},
	}
}

// Tag returns the layer for class c, checking its file path segments
// first, then its class-name suffix, in descending suffix length so
// "SVCImpl" is checked before "SVC"/"Service".
func (t *LayerTagger) Tag(c *model.ClassInfo) model.Layer {
	if layer, ok := t.byPathSegment(c.FilePath); ok {
		return layer
	}
	if layer, ok := t.bySuffix(c.Name); ok {
		return layer
	}
	return model.LayerUnknown
}

func (t *LayerTagger) byPathSegment(path string) (model.Layer, bool) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	for _, seg := range segments {
		if layer, ok := t.suffixRules[seg]; ok {
			return layer, true
		}
	}
	return "", false
}

func (t *LayerTagger) bySuffix(className string) (model.Layer, bool) {
	var bestSuffix string
	var bestLayer model.Layer
	for suffix, layer := range t.suffixRules {
		if len(suffix) > len(className) {
			continue
		}
		if strings.EqualFold(className[len(className)-len(suffix):], suffix) && len(suffix) > len(bestSuffix) {
			bestSuffix = suffix
			bestLayer = layer
		}
	}
	if bestSuffix == "" {
		return "", false
	}
	return bestLayer, true
}
