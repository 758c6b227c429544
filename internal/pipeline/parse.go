package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/applycrypto/engine/internal/cache"
	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/engineerr"
	"github.com/applycrypto/engine/internal/javaast"
	"github.com/applycrypto/engine/internal/model"
)

// parseJavaFiles parses every .java SourceFile concurrently, per spec §5:
// per-file parsing jobs are independent and may run on separate
// goroutines; a failed or timed-out file is recorded in summary and
// excluded, never aborting the run.
func parseJavaFiles(ctx context.Context, cfg *config.Config, files []model.SourceFile, store *cache.Store, progress ProgressReporter, summary *engineerr.Summary) (map[string]*model.FileAst, error) {
	var javaFiles []model.SourceFile
	for _, f := range files {
		if strings.EqualFold(f.Extension, ".java") {
			javaFiles = append(javaFiles, f)
		}
	}

	workers := cfg.Engine.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	timeout := time.Duration(cfg.Engine.ParseTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	progress.StartStage("Parsing Java sources", len(javaFiles))
	defer progress.FinishStage()

	results := make([]*model.FileAst, len(javaFiles))
	errs := make([]*engineerr.Error, len(javaFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	parser := javaast.New()
	for i, f := range javaFiles {
		i, f := i, f
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			ast, err := parseOneJavaFile(parser, f, store, cfg.Cache.ParserSchemaVersion, timeout)
			if err != nil {
				errs[i] = engineerr.New(engineerr.KindParse, f.AbsolutePath, err)
			} else {
				results[i] = ast
			}
			progress.Increment()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*model.FileAst, len(javaFiles))
	for i, ast := range results {
		if errs[i] != nil {
			summary.Add(errs[i])
			continue
		}
		if ast.Quality == model.ParseQualityDegraded {
			summary.Add(engineerr.New(engineerr.KindParse, javaFiles[i].AbsolutePath, fmt.Errorf("degraded parse: %s", ast.Error)))
		}
		out[javaFiles[i].AbsolutePath] = ast
	}
	return out, nil
}

// parseOneJavaFile consults the cache before running the tree-sitter
// parse, and fills it on a miss. A cache hit skips both the parse and the
// timeout race entirely — spec §4.2's whole point.
func parseOneJavaFile(parser *javaast.Parser, f model.SourceFile, store *cache.Store, schemaVersion string, timeout time.Duration) (*model.FileAst, error) {
	raw, err := os.ReadFile(f.AbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.AbsolutePath, err)
	}

	var key cache.Key
	haveKey := false
	if store != nil {
		if k, err := cache.KeyForFile(f.AbsolutePath, schemaVersion); err == nil {
			key, haveKey = k, true
			if cached, ok, _ := store.Get(key); ok {
				var ast model.FileAst
				if json.Unmarshal(cached, &ast) == nil {
					return &ast, nil
				}
			}
		}
	}

	type parseResult struct{ ast *model.FileAst }
	done := make(chan parseResult, 1)
	go func() { done <- parseResult{parser.Parse(f.AbsolutePath, raw)} }()

	var ast *model.FileAst
	select {
	case r := <-done:
		ast = r.ast
	case <-time.After(timeout):
		return nil, fmt.Errorf("parse timed out after %s", timeout)
	}

	if store != nil && haveKey {
		if encoded, err := json.Marshal(ast); err == nil {
			_ = store.Put(key, encoded)
		}
	}
	return ast, nil
}
