package batcher

import (
	"sort"

	"github.com/applycrypto/engine/internal/model"
)

var keywordLayerDirs = map[string]bool{"svc": true, "biz": true}
var contextDirs = map[string]bool{"dvo": true, "dem": true}

// JdbcAnyframeStrategy implements the JDBC / Anyframe online grouping of
// spec §4.8: BIZ and SVC files sharing a path "keyword" segment batch
// together (which naturally keeps an SVCImpl/SVC interface pair in one
// group, since both live under the same keyword directory), and DVO/DEM
// files become context_files only when some file in the group imports
// them.
type JdbcAnyframeStrategy struct{}

func (JdbcAnyframeStrategy) Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup {
	byKeyword := make(map[string][]string)
	for _, layer := range []model.Layer{model.LayerService, model.LayerServiceImpl} {
		for _, f := range info.LayerFiles[layer] {
			kw := pathKeyword(f, keywordLayerDirs)
			if kw == "" {
				kw = "_"
			}
			byKeyword[kw] = append(byKeyword[kw], f)
		}
	}

	var dvoDemCandidates []string
	for _, f := range idx.AllFiles() {
		if containsDir(f, contextDirs) {
			dvoDemCandidates = append(dvoDemCandidates, f)
		}
	}

	keywords := make([]string, 0, len(byKeyword))
	for kw := range byKeyword {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	var groups []FileGroup
	for _, kw := range keywords {
		files := byKeyword[kw]
		sort.Strings(files)

		var contextFiles []string
		for _, cf := range dvoDemCandidates {
			if importedByAny(idx, files, cf) {
				contextFiles = append(contextFiles, cf)
			}
		}

		groups = append(groups, FileGroup{
			Layer:           model.LayerServiceImpl,
			ModifiableFiles: files,
			ContextFiles:    dedupeStrings(contextFiles),
		})
	}
	return groups
}
