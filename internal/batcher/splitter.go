package batcher

import (
	"fmt"

	"github.com/applycrypto/engine/internal/model"
)

// Splitter implements the common greedy packer of spec §4.8: given an
// ordered list of modifiable files and an ordered list of context-only
// files, it prices a synthetic empty prompt plus each file's rendered
// block and packs modifiable files into batches, starting a new batch
// whenever appending one would exceed maxTokensPerBatch. A single file is
// never split, even if it alone exceeds the budget.
type Splitter struct {
	fs                  FileSystem
	estimate            TokenEstimator
	maxTokensPerBatch   int
	contextFileTokenCap int
	emptyPromptTokens   int
}

// NewSplitter builds a Splitter. emptyPromptTemplate is the configured
// code-generator's create_prompt output with no file bodies, priced once.
func NewSplitter(fs FileSystem, estimate TokenEstimator, maxTokensPerBatch, contextFileTokenCap int, emptyPromptTemplate string) *Splitter {
	if estimate == nil {
		estimate = DefaultTokenEstimator
	}
	return &Splitter{
		fs:                  fs,
		estimate:            estimate,
		maxTokensPerBatch:   maxTokensPerBatch,
		contextFileTokenCap: contextFileTokenCap,
		emptyPromptTokens:   estimate(emptyPromptTemplate),
	}
}

// Warning is a non-fatal note surfaced alongside a batch set, e.g. a
// context file dropped for exceeding its secondary budget.
type Warning string

func (s *Splitter) priceFile(path string) (int, error) {
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return s.estimate(FileBlock(path, string(raw))), nil
}

// capContextFiles enforces the secondary context_files budget of spec
// §4.8: files beyond the cap are dropped, in order, never split.
func (s *Splitter) capContextFiles(files []string) (kept []string, warnings []Warning) {
	budget := s.contextFileTokenCap
	for _, f := range files {
		cost, err := s.priceFile(f)
		if err != nil {
			warnings = append(warnings, Warning(fmt.Sprintf("context file %s unreadable, dropped: %v", f, err)))
			continue
		}
		if cost > budget {
			warnings = append(warnings, Warning(fmt.Sprintf("context file %s dropped: exceeds context_file_token_cap", f)))
			continue
		}
		kept = append(kept, f)
		budget -= cost
	}
	return kept, warnings
}

// Split packs modifiable into token-bounded ModificationContext batches,
// each sharing the same (capped) contextFiles, tableName, columns, and
// layer. priceOverride, if non-nil, supplies a precomputed token cost for
// a modifiable file instead of pricing its whole body — the method-level
// charging the BNK online strategy needs.
func (s *Splitter) Split(
	modifiable []string,
	priceOverride map[string]int,
	contextFiles []string,
	tableName string,
	columns []model.Column,
	layer model.Layer,
) ([]model.ModificationContext, []Warning) {
	cappedContext, warnings := s.capContextFiles(contextFiles)

	contextTokens := 0
	for _, f := range cappedContext {
		cost, err := s.priceFile(f)
		if err != nil {
			continue
		}
		contextTokens += cost
	}
	baseTokens := s.emptyPromptTokens + contextTokens

	var batches []model.ModificationContext
	var current []string
	currentTokens := baseTokens

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, model.ModificationContext{
			FilePaths:    append([]string(nil), current...),
			ContextFiles: append([]string(nil), cappedContext...),
			TableName:    tableName,
			Columns:      columns,
			FileCount:    len(current),
			Layer:        layer,
		})
		current = nil
		currentTokens = baseTokens
	}

	for _, f := range modifiable {
		cost, ok := priceOverride[f]
		if !ok {
			var err error
			cost, err = s.priceFile(f)
			if err != nil {
				warnings = append(warnings, Warning(fmt.Sprintf("skipping %s: %v", f, err)))
				continue
			}
		}

		if len(current) > 0 && currentTokens+cost > s.maxTokensPerBatch {
			flush()
		}
		current = append(current, f)
		currentTokens += cost
	}
	flush()

	return batches, warnings
}
