package pipeline

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/engineerr"
	"github.com/applycrypto/engine/internal/model"
	"github.com/applycrypto/engine/internal/sqlextract"
)

// extractSQL runs the configured SqlExtractor strategy over every source
// file concurrently. ast is nil for files the parser stage didn't
// produce an AST for (non-.java files, or files that failed to parse) —
// the JDBC and JPA strategies yield an empty result for a nil ast rather
// than an error, and the MyBatis strategy reads XML mappers without one
// (spec §4.9's best-effort semantics).
func extractSQL(ctx context.Context, cfg *config.Config, files []model.SourceFile, asts map[string]*model.FileAst, progress ProgressReporter, summary *engineerr.Summary) ([]model.SqlExtractionOutput, error) {
	strategy := sqlextract.New(string(cfg.SqlWrappingType))

	workers := cfg.Engine.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	progress.StartStage("Extracting SQL", len(files))
	defer progress.FinishStage()

	results := make([]*model.SqlExtractionOutput, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			defer progress.Increment()

			raw, err := os.ReadFile(f.AbsolutePath)
			if err != nil {
				summary.Add(engineerr.New(engineerr.KindIO, f.AbsolutePath, err))
				return nil
			}

			out, err := strategy.Extract(f.AbsolutePath, raw, asts[f.AbsolutePath])
			if err != nil {
				summary.Add(engineerr.New(engineerr.KindParse, f.AbsolutePath, err))
				return nil
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var outputs []model.SqlExtractionOutput
	for _, r := range results {
		if r != nil && len(r.SqlQueries) > 0 {
			outputs = append(outputs, *r)
		}
	}
	return outputs, nil
}
