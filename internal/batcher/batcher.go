package batcher

import (
	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/model"
)

// Batcher turns TableAccessInfo records into ModificationContext batches,
// per spec §4.8: a configured GroupingStrategy partitions files, then the
// common Splitter enforces the token budget.
type Batcher struct {
	strategy GroupingStrategy
	splitter *Splitter
	idx      *ProjectIndex
}

// New selects a GroupingStrategy from cfg, mirroring the pluggable-axis
// factory pattern spec §9 calls for: ModificationType and SqlWrappingType
// select a known variant, never a runtime string-keyed dispatch.
//
//   - ModTypeHandler always wins: it names its own batching unit
//     regardless of how SQL is wrapped.
//   - mybatis_ccs_batch selects the BAT-file grouping.
//   - mybatis (+ any framework) selects the Spring MVC import-chain
//     closure, since MyBatis in this corpus is always paired with
//     Spring MVC controllers.
//   - jdbc, grouped by ModificationType: ControllerOrService selects the
//     plain keyword grouping; ServiceImplOrBiz selects the BNK online
//     variant, since "ServiceImplOrBiz" names exactly the BIZ
//     method-level charging spec §4.8 describes.
//   - anything else falls back to the per-layer default.
func New(cfg *config.Config, fs FileSystem, estimate TokenEstimator, emptyPromptTemplate string, asts []*model.FileAst) *Batcher {
	if fs == nil {
		fs = OSFileSystem()
	}
	return &Batcher{
		strategy: selectStrategy(cfg, fs, estimate),
		splitter: NewSplitter(fs, estimate, cfg.MaxTokensPerBatch, cfg.ContextFileTokenCap, emptyPromptTemplate),
		idx:      NewProjectIndex(asts),
	}
}

func selectStrategy(cfg *config.Config, fs FileSystem, estimate TokenEstimator) GroupingStrategy {
	switch {
	case cfg.ModificationType == config.ModTypeHandler:
		return TypeHandlerStrategy{}
	case cfg.SqlWrappingType == config.WrappingMyBatisBatch:
		return MyBatisBatchStrategy{FS: fs}
	case cfg.SqlWrappingType == config.WrappingMyBatis:
		return MyBatisSpringMvcStrategy{}
	case cfg.SqlWrappingType == config.WrappingJDBC && cfg.ModificationType == config.ModServiceImplOrBiz:
		return JdbcBnkStrategy{FS: fs, Estimate: estimate}
	case cfg.SqlWrappingType == config.WrappingJDBC:
		return JdbcAnyframeStrategy{}
	default:
		return PerLayerStrategy{}
	}
}

// Batch groups and splits a single TableAccessInfo, returning its
// ModificationContext batches and any non-fatal warnings.
func (b *Batcher) Batch(info model.TableAccessInfo, outputs []model.SqlExtractionOutput) ([]model.ModificationContext, []Warning) {
	groups := b.strategy.Group(info, b.idx, outputs)

	var batches []model.ModificationContext
	var warnings []Warning
	for _, g := range groups {
		if len(g.ModifiableFiles) == 0 {
			continue
		}
		groupBatches, groupWarnings := b.splitter.Split(
			g.ModifiableFiles, g.PriceOverride, g.ContextFiles,
			info.TableName, info.Columns, g.Layer,
		)
		batches = append(batches, groupBatches...)
		warnings = append(warnings, groupWarnings...)
	}
	return batches, warnings
}

// BatchAll runs Batch over every TableAccessInfo, in order.
func (b *Batcher) BatchAll(infos []model.TableAccessInfo, outputs []model.SqlExtractionOutput) ([]model.ModificationContext, []Warning) {
	var all []model.ModificationContext
	var warnings []Warning
	for _, info := range infos {
		batches, w := b.Batch(info, outputs)
		all = append(all, batches...)
		warnings = append(warnings, w...)
	}
	return all, warnings
}
