// Package pipeline wires every analysis stage into one run: collect
// source files, parse them, extract SQL, build the call graph, resolve
// table access, and batch the result into LLM-sized modification
// contexts. It mirrors the teacher's own top-level run loop in shape —
// a single orchestrator holding references to each stage's already-built
// component, never reimplementing their logic.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/applycrypto/engine/internal/batcher"
	"github.com/applycrypto/engine/internal/cache"
	"github.com/applycrypto/engine/internal/callgraph"
	"github.com/applycrypto/engine/internal/collector"
	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/engineerr"
	"github.com/applycrypto/engine/internal/git"
	"github.com/applycrypto/engine/internal/model"
	"github.com/applycrypto/engine/internal/tableaccess"
)

// Result is everything one run produces: every intermediate artifact
// plus the non-fatal failure summary, so a caller can persist or inspect
// any stage's output independently.
type Result struct {
	Metadata        model.RunMetadata
	SourceFiles     []model.SourceFile
	SqlExtractions  []model.SqlExtractionOutput
	CallGraph       *callgraph.CallGraph
	TableAccess     []model.TableAccessInfo
	Modifications   []model.ModificationContext
	Warnings        []batcher.Warning
	Summary         *engineerr.Summary
}

// Pipeline holds the long-lived collaborators a run needs: the content
// cache and the git operations used to stamp provenance. Both outlive a
// single Run so a CLI can reuse them across --watch iterations.
type Pipeline struct {
	cache    *cache.Store
	git      git.Operations
	progress ProgressReporter
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithProgress overrides the default no-op ProgressReporter.
func WithProgress(p ProgressReporter) Option {
	return func(pl *Pipeline) { pl.progress = p }
}

// WithGitOperations overrides the default shell-backed git.Operations,
// mainly for tests.
func WithGitOperations(ops git.Operations) Option {
	return func(pl *Pipeline) { pl.git = ops }
}

// New opens the cache store rooted at cfg's target project and returns a
// Pipeline ready to Run. Callers must Close it when done.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	store, err := cache.Open(cacheDir(cfg.TargetProject), cfg.Cache.InMemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	pl := &Pipeline{
		cache:    store,
		git:      git.NewOperations(),
		progress: NoopReporter{},
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl, nil
}

func cacheDir(targetProject string) string {
	return targetProject + "/.applycrypto/cache"
}

// Close releases the cache store.
func (p *Pipeline) Close() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close()
}

// Run executes one complete analysis, per spec §5's staged concurrency
// model: file collection is sequential and deterministic, parsing and
// SQL extraction are parallel per file, and everything downstream
// (call graph, table access, batching) is a single sequential pass over
// already-reduced data. ctx cancellation is honored at each stage
// boundary and inside the parallel stages' worker pools.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	summary := engineerr.NewSummary()

	files, err := p.collect(cfg)
	if err != nil {
		return nil, engineerr.New(engineerr.KindIO, cfg.TargetProject, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, engineerr.New(engineerr.KindCancel, cfg.TargetProject, err)
	}

	asts, err := parseJavaFiles(ctx, cfg, files, p.cache, p.progress, summary)
	if err != nil {
		return nil, engineerr.New(engineerr.KindCancel, cfg.TargetProject, err)
	}
	if abortOnFailureRate(cfg, len(files), summary) {
		return nil, engineerr.New(engineerr.KindParse, cfg.TargetProject,
			fmt.Errorf("parse failure rate exceeded parse_failure_abort_pct"))
	}

	outputs, err := extractSQL(ctx, cfg, files, asts, p.progress, summary)
	if err != nil {
		return nil, engineerr.New(engineerr.KindCancel, cfg.TargetProject, err)
	}

	astList := astSlice(asts)
	builder := callgraph.NewBuilder(astList, string(cfg.FrameworkType))
	graph := builder.Build()
	tagger := builder.LayerTagger()

	layerOf := func(filePath string) model.Layer {
		for _, ast := range astList {
			if ast.FilePath != filePath {
				continue
			}
			for _, c := range ast.Classes {
				return tagger.Tag(c)
			}
		}
		return model.LayerUnknown
	}

	analyzer := tableaccess.New(graph, layerOf, cfg.AccessTables, cfg.Graph.MaxCallDepth)
	tableInfo := analyzer.Analyze(outputs, resolveSink)

	b := batcher.New(cfg, nil, batcher.DefaultTokenEstimator, "", astList)
	mods, warnings := b.BatchAll(tableInfo, outputs)

	meta := p.stampMetadata(cfg.TargetProject)

	return &Result{
		Metadata:       meta,
		SourceFiles:    files,
		SqlExtractions: outputs,
		CallGraph:      graph,
		TableAccess:    tableInfo,
		Modifications:  mods,
		Warnings:       warnings,
		Summary:        summary,
	}, nil
}

func (p *Pipeline) collect(cfg *config.Config) ([]model.SourceFile, error) {
	c, err := collector.New(cfg.TargetProject, cfg.SourceFileTypes, cfg.ExcludeDirs, cfg.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	return c.Collect()
}

func (p *Pipeline) stampMetadata(projectRoot string) model.RunMetadata {
	meta := model.RunMetadata{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		ProjectRoot: projectRoot,
	}
	if p.git != nil {
		meta.Branch = p.git.CurrentBranch(projectRoot)
		meta.Commit = p.git.CurrentCommit(projectRoot)
		meta.Remote = p.git.RemoteURL(projectRoot)
	}
	return meta
}

func astSlice(m map[string]*model.FileAst) []*model.FileAst {
	out := make([]*model.FileAst, 0, len(m))
	for _, ast := range m {
		out = append(out, ast)
	}
	return out
}

// resolveSink picks the sink-resolution rule by which strategy produced
// the query: a StrategySpecific["namespace"] marks MyBatis XML output,
// everything else is a JDBC/JPA method-qualified ID.
func resolveSink(q model.SqlQuery) string {
	if ns, ok := q.StrategySpecific["namespace"]; ok {
		return tableaccess.MyBatisSink(ns, q.ID)
	}
	return tableaccess.MethodSink(q.ID)
}

// abortOnFailureRate implements spec §4.9: if the proportion of files
// that failed to parse exceeds EngineConfig.ParseFailureAbortPct, the run
// aborts instead of silently producing a degraded result. A zero or
// negative threshold disables the check.
func abortOnFailureRate(cfg *config.Config, totalFiles int, summary *engineerr.Summary) bool {
	if cfg.Engine.ParseFailureAbortPct <= 0 || totalFiles == 0 {
		return false
	}
	failed := 0
	for _, n := range summary.Counts() {
		failed += n
	}
	return float64(failed)/float64(totalFiles) > cfg.Engine.ParseFailureAbortPct
}
