package batcher

import (
	"os"
	"path/filepath"
)

// FileSystem is the narrow surface the batcher needs over a target
// project's tree: reading candidate file contents for token pricing, and
// globbing for the sibling/parent XML pairing the MyBatis batch strategy
// performs. Tests substitute an in-memory implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Glob(pattern string) ([]string, error)
}

// osFileSystem backs FileSystem with the real filesystem.
type osFileSystem struct{}

// OSFileSystem returns the production FileSystem.
func OSFileSystem() FileSystem { return osFileSystem{} }

func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (osFileSystem) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }
