// Package collector implements the recursive, deterministic source-file
// discovery described in spec §4.1. Filtering order is: directory
// exclude -> hidden-file exclude -> extension whitelist -> glob exclude.
package collector

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/applycrypto/engine/internal/model"
)

// defaultExcludeDirs are always excluded in addition to any user-supplied
// exclude_dirs (spec §4.1).
var defaultExcludeDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"target": true, "build": true, "out": true, "bin": true,
	".idea": true, ".vscode": true, ".settings": true,
	"node_modules": true,
	".gradle": true, ".mvn": true,
}

// Collector discovers SourceFile values under a project root.
type Collector interface {
	// Collect walks the tree and returns every matching SourceFile.
	// Iteration order is deterministic (lexicographic by relative path)
	// regardless of filesystem enumeration order.
	Collect() ([]model.SourceFile, error)

	// CollectedCount returns the number of files returned by the most
	// recent Collect call, or 0 if Collect has not run yet.
	CollectedCount() int
}

type collector struct {
	rootDir      string
	extensions   map[string]bool
	excludeDirs  map[string]bool
	excludeGlobs []glob.Glob
	count        int
}

// New creates a Collector rooted at rootDir.
//
// extensions is matched case-insensitively against the file extension
// (including the leading dot, e.g. ".java"). excludeDirs extends the
// built-in default-excluded directory names. excludeFiles is a glob list
// checked against both the bare filename and the project-relative path.
func New(rootDir string, extensions, excludeDirs, excludeFiles []string) (Collector, error) {
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(e)] = true
	}

	dirSet := make(map[string]bool, len(defaultExcludeDirs)+len(excludeDirs))
	for d := range defaultExcludeDirs {
		dirSet[d] = true
	}
	for _, d := range excludeDirs {
		dirSet[d] = true
	}

	globs := make([]glob.Glob, 0, len(excludeFiles))
	for _, pattern := range excludeFiles {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}

	return &collector{
		rootDir:      rootDir,
		extensions:   extSet,
		excludeDirs:  dirSet,
		excludeGlobs: globs,
	}, nil
}

func (c *collector) Collect() ([]model.SourceFile, error) {
	var files []model.SourceFile

	err := filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() {
				// Permission errors on a directory: skip the subtree silently.
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != c.rootDir && c.excludeDirs[info.Name()] {
				return filepath.SkipDir
			}
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !c.extensions[ext] {
			return nil
		}

		relPath, relErr := filepath.Rel(c.rootDir, path)
		if relErr != nil {
			relPath = path
		}

		if c.isGlobExcluded(info.Name(), relPath) {
			return nil
		}

		abs := canonicalize(path)

		files = append(files, model.SourceFile{
			AbsolutePath: abs,
			RelativePath: filepath.ToSlash(relPath),
			Filename:     info.Name(),
			Extension:    ext,
			Size:         info.Size(),
			ModifiedTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	files = dedupeByAbsolutePath(files)

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	c.count = len(files)
	return files, nil
}

// dedupeByAbsolutePath collapses files whose canonicalized absolute path
// collides (e.g. reached via a symlink and directly), keeping the first
// occurrence encountered during the walk.
func dedupeByAbsolutePath(files []model.SourceFile) []model.SourceFile {
	seen := make(map[string]bool, len(files))
	out := make([]model.SourceFile, 0, len(files))
	for _, f := range files {
		if seen[f.AbsolutePath] {
			continue
		}
		seen[f.AbsolutePath] = true
		out = append(out, f)
	}
	return out
}

func (c *collector) CollectedCount() int {
	return c.count
}

func (c *collector) isGlobExcluded(filename, relPath string) bool {
	relSlash := filepath.ToSlash(relPath)
	for _, g := range c.excludeGlobs {
		if g.Match(filename) || g.Match(relSlash) {
			return true
		}
	}
	return false
}

// canonicalize resolves symlinks for deduplication; it falls back to the
// absolute path if resolution fails (e.g. a dangling symlink).
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
