package batcher

import (
	"sort"
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// MyBatisSpringMvcStrategy implements the MyBatis / Spring MVC grouping
// of spec §4.8: for each Controller touching the table, chase imports
// transitively through Service to Repository/Mapper, collecting the
// reachable set as one modifiable group. Mapper XML files among the
// table's access files and VO types referenced by reached methods become
// context_files.
type MyBatisSpringMvcStrategy struct{}

func (MyBatisSpringMvcStrategy) Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup {
	accessSet := toSet(info.AccessFiles)

	var groups []FileGroup
	for _, controller := range info.LayerFiles[model.LayerController] {
		reached := chaseImports(controller, idx, accessSet)

		var modifiable []string
		for f := range reached {
			if strings.HasSuffix(strings.ToLower(f), ".xml") {
				continue
			}
			modifiable = append(modifiable, f)
		}
		sort.Strings(modifiable)

		var contextFiles []string
		for _, f := range info.AccessFiles {
			if strings.HasSuffix(strings.ToLower(f), ".xml") {
				contextFiles = append(contextFiles, f)
			}
		}
		contextFiles = append(contextFiles, voContextFiles(idx, reached)...)

		groups = append(groups, FileGroup{
			Layer:           model.LayerController,
			ModifiableFiles: modifiable,
			ContextFiles:    dedupeStrings(contextFiles),
		})
	}
	return groups
}

// chaseImports walks controller's import graph breadth-first, restricted
// to files the table's access set already names (Service/ServiceImpl/
// Repository), to avoid pulling in unrelated parts of the project.
func chaseImports(start string, idx *ProjectIndex, restrictTo map[string]bool) map[string]bool {
	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, imp := range idx.Imports(cur) {
			name := lastSegment(imp)
			for _, f := range idx.FilesForSimpleName(name) {
				if reached[f] || !restrictTo[f] {
					continue
				}
				reached[f] = true
				queue = append(queue, f)
			}
		}
	}
	return reached
}

// voContextFiles resolves the VO/DTO types referenced by every method in
// the reached class set, returning the files that declare them.
func voContextFiles(idx *ProjectIndex, reached map[string]bool) []string {
	var files []string
	for f := range reached {
		for _, c := range idx.Classes(f) {
			for _, m := range c.Methods {
				for _, typeName := range ParameterAndReturnTypeNames(m) {
					for _, voFile := range idx.FilesForSimpleName(typeName) {
						if !reached[voFile] {
							files = append(files, voFile)
						}
					}
				}
			}
		}
	}
	return files
}
