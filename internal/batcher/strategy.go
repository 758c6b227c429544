package batcher

import "github.com/applycrypto/engine/internal/model"

// FileGroup is one grouping strategy's output for one architectural
// bucket within a TableAccessInfo: the files it proposes to modify
// together, the read-only context files to attach, and — for the BNK
// online variant only — a per-file token-cost override.
type FileGroup struct {
	Layer           model.Layer
	ModifiableFiles []string
	ContextFiles    []string
	PriceOverride   map[string]int
}

// GroupingStrategy partitions a TableAccessInfo's files into FileGroups,
// per spec §4.8. Each group is independently handed to the Splitter.
// outputs is the full pre-aggregation SQL extraction result set — most
// strategies ignore it, but TypeHandlerStrategy needs the per-query
// resultType/parameterType metadata that TableAccessInfo's aggregated
// CallStackQuery view drops.
type GroupingStrategy interface {
	Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup
}

// PerLayerStrategy is the spec's default: one group per layer_files
// entry, with no context files. It requires no project-wide knowledge
// beyond what TableAccessInfo already carries.
type PerLayerStrategy struct{}

func (PerLayerStrategy) Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup {
	var groups []FileGroup
	for layer, files := range info.LayerFiles {
		if len(files) == 0 {
			continue
		}
		groups = append(groups, FileGroup{
			Layer:           layer,
			ModifiableFiles: append([]string(nil), files...),
		})
	}
	return groups
}
