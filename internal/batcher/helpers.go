package batcher

import (
	"path/filepath"
	"strings"
)

// pathKeyword implements spec §4.8's "keyword" extraction: the directory
// segment immediately preceding the first segment matching one of
// layerDirs, e.g. ".../tgt/svc/..." with layerDirs={"svc"} yields "tgt".
func pathKeyword(path string, layerDirs map[string]bool) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		if i == 0 {
			continue
		}
		if layerDirs[strings.ToLower(seg)] {
			return segments[i-1]
		}
	}
	return ""
}

// containsDir reports whether any path segment matches one of dirs.
func containsDir(path string, dirs map[string]bool) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if dirs[strings.ToLower(seg)] {
			return true
		}
	}
	return false
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

// simpleClassName derives the class/file identifier used to check import
// relationships, preferring the indexed class name over the bare filename.
func simpleClassName(idx *ProjectIndex, path string) string {
	if classes := idx.Classes(path); len(classes) > 0 {
		return classes[0].Name
	}
	stem := filepath.Base(path)
	return strings.TrimSuffix(stem, filepath.Ext(stem))
}

func importedByAny(idx *ProjectIndex, files []string, candidate string) bool {
	name := simpleClassName(idx, candidate)
	for _, f := range files {
		if idx.ImportsSimpleName(f, name) {
			return true
		}
	}
	return false
}
