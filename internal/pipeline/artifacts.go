package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// resultsDir is where a run's artifacts live, relative to the target
// project root.
func resultsDir(targetProject string) string {
	return filepath.Join(targetProject, ".applycrypto", "results")
}

// artifact bundles a Result field with the filename it's written under.
type artifact struct {
	name string
	data any
}

// WriteArtifacts persists every stage's output as its own JSON file
// under <target_project>/.applycrypto/results, per spec §6: downstream
// tooling (the query CLI, a human reviewer, the code generator) consumes
// these independently rather than one monolithic blob.
func WriteArtifacts(targetProject string, res *Result) error {
	dir := resultsDir(targetProject)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	artifacts := []artifact{
		{"run_metadata.json", res.Metadata},
		{"source_files.json", res.SourceFiles},
		{"sql_extraction_results.json", res.SqlExtractions},
		{"call_graph.json", res.CallGraph},
		{"table_access_info.json", res.TableAccess},
		{"modification_contexts.json", res.Modifications},
	}

	for _, a := range artifacts {
		if err := writeJSON(filepath.Join(dir, a.name), a.data); err != nil {
			return fmt.Errorf("write %s: %w", a.name, err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
