package batcher

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// MyBatisBatchStrategy implements the MyBatis CCS batch / BNK batch
// grouping of spec §4.8: each BAT Java file is its own modifiable set,
// paired with the BATVOs it imports plus its "<stem>_SQL.xml" sibling,
// searched for in the BAT's own directory, its parent, and any sibling
// xml/ directory.
type MyBatisBatchStrategy struct {
	FS FileSystem
}

func (s MyBatisBatchStrategy) Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup {
	var batFiles []string
	for _, f := range info.AccessFiles {
		if isBatFile(f) {
			batFiles = append(batFiles, f)
		}
	}
	sort.Strings(batFiles)

	var groups []FileGroup
	for _, f := range batFiles {
		var contextFiles []string
		for _, imp := range idx.Imports(f) {
			name := lastSegment(imp)
			if !strings.Contains(strings.ToUpper(name), "VO") {
				continue
			}
			contextFiles = append(contextFiles, idx.FilesForSimpleName(name)...)
		}
		if xml, ok := s.findPairedXML(f); ok {
			contextFiles = append(contextFiles, xml)
		}
		sort.Strings(contextFiles)

		groups = append(groups, FileGroup{
			Layer:           model.LayerUnknown,
			ModifiableFiles: []string{f},
			ContextFiles:    dedupeStrings(contextFiles),
		})
	}
	return groups
}

func isBatFile(path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(strings.ToUpper(stem), "BAT")
}

// findPairedXML searches the BAT's own directory, its parent, and any
// sibling xml/ directory for "<stem>_SQL.xml".
func (s MyBatisBatchStrategy) findPairedXML(batFile string) (string, bool) {
	stem := strings.TrimSuffix(filepath.Base(batFile), filepath.Ext(batFile))
	want := stem + "_SQL.xml"
	dir := filepath.Dir(batFile)
	parent := filepath.Dir(dir)

	candidates := []string{
		filepath.Join(dir, want),
		filepath.Join(parent, want),
		filepath.Join(dir, "xml", want),
		filepath.Join(parent, "xml", want),
	}
	for _, c := range candidates {
		matches, err := s.FS.Glob(c)
		if err == nil && len(matches) > 0 {
			return matches[0], true
		}
	}
	return "", false
}
