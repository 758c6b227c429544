package batcher

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// TypeHandlerStrategy implements the TypeHandler grouping of spec §4.8:
// each Mapper XML is its own modifiable unit, with the VO types its
// statements declare via resultType/parameterType resolved against
// repository files and offered as context, budgeted per namespace by the
// Splitter's context_file cap.
type TypeHandlerStrategy struct{}

func (TypeHandlerStrategy) Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup {
	queriesByFile := make(map[string][]model.SqlQuery)
	for _, out := range outputs {
		for _, q := range out.SqlQueries {
			queriesByFile[q.FilePath] = append(queriesByFile[q.FilePath], q)
		}
	}

	var groups []FileGroup
	for _, f := range info.AccessFiles {
		if !strings.HasSuffix(strings.ToLower(f), ".xml") {
			continue
		}
		queries, ok := queriesByFile[f]
		if !ok {
			continue
		}

		var contextFiles []string
		for _, q := range queries {
			for _, key := range []string{"result_type", "parameter_type"} {
				typeName := q.StrategySpecific[key]
				if typeName == "" {
					continue
				}
				contextFiles = append(contextFiles, idx.FilesForSimpleName(simpleTypeName(typeName))...)
			}
		}

		groups = append(groups, FileGroup{
			Layer:           model.LayerUnknown,
			ModifiableFiles: []string{f},
			ContextFiles:    dedupeStrings(contextFiles),
		})
	}
	return groups
}
