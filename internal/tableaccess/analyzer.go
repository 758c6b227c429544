// Package tableaccess implements the TableAccessAnalyzer of spec §4.7:
// joining extracted SQL queries to the call graph's endpoints, producing
// one TableAccessInfo per configured target table that is actually
// touched.
package tableaccess

import (
	"sort"

	"github.com/applycrypto/engine/internal/callgraph"
	"github.com/applycrypto/engine/internal/config"
	"github.com/applycrypto/engine/internal/model"
	"github.com/applycrypto/engine/internal/sqlparse"
)

// Analyzer binds a CallGraph and a set of target tables to the SQL
// extraction outputs produced for one project.
type Analyzer struct {
	graph        *callgraph.CallGraph
	layerOf      func(filePath string) model.Layer
	targetTables map[string]config.TargetTable
	maxCallDepth int
}

// New creates an Analyzer. layerOf maps a file path to its architectural
// layer — the caller supplies this so the analyzer stays decoupled from
// how layers were computed (ClassInfo-based tagging, or a path fallback
// for non-Java files like mapper XML).
func New(graph *callgraph.CallGraph, layerOf func(string) model.Layer, targets []config.TargetTable, maxCallDepth int) *Analyzer {
	byName := make(map[string]config.TargetTable, len(targets))
	for _, t := range targets {
		byName[t.TableName] = t
	}
	return &Analyzer{graph: graph, layerOf: layerOf, targetTables: byName, maxCallDepth: maxCallDepth}
}

// sinkResolver identifies the qualified method that "owns" a SqlQuery —
// the Mapper-interface method for MyBatis, or the declaring method for
// JDBC/JPA (where query.ID is already that qualified name).
type sinkResolver func(model.SqlQuery) string

// matchedQuery is a retained SqlQuery paired with the target tables it
// touched, produced by Analyze's first pass and consumed by aggregateTable.
type matchedQuery struct {
	query  model.SqlQuery
	tables []string
}

// Analyze runs the first three steps of spec §4.7's algorithm over every
// extracted query, returning one TableAccessInfo per target table actually
// found. It does not tag SourceFiles.
func (a *Analyzer) Analyze(outputs []model.SqlExtractionOutput, resolveSink sinkResolver) []model.TableAccessInfo {
	perTable := make(map[string][]matchedQuery)

	for _, out := range outputs {
		for _, q := range out.SqlQueries {
			normalized := sqlparse.NormalizeForExtraction(q.SQL)
			tables := sqlparse.ExtractTables(normalized)

			var matched []string
			for _, t := range tables {
				if _, ok := a.targetTables[t]; ok {
					matched = append(matched, t)
				}
			}
			if len(matched) == 0 {
				continue
			}
			for _, t := range matched {
				perTable[t] = append(perTable[t], matchedQuery{query: q, tables: matched})
			}
		}
	}

	var results []model.TableAccessInfo
	for tableName, entries := range perTable {
		info := a.aggregateTable(tableName, entries, resolveSink)
		results = append(results, info)
	}
	return results
}

func (a *Analyzer) aggregateTable(tableName string, entries []matchedQuery, resolveSink sinkResolver) model.TableAccessInfo {
	target := a.targetTables[tableName]

	accessFileSet := make(map[string]bool)
	layerFiles := make(map[model.Layer]map[string]bool)
	var callStackQueries []model.CallStackQuery
	typeCounts := map[model.QueryType]int{}
	extraColumns := make(map[string]bool)

	for _, e := range entries {
		q := e.query
		typeCounts[q.QueryType]++

		accessFileSet[q.FilePath] = true
		queryLayer := a.layerOf(q.FilePath)
		if layerFiles[queryLayer] == nil {
			layerFiles[queryLayer] = make(map[string]bool)
		}
		layerFiles[queryLayer][q.FilePath] = true

		sink := resolveSink(q)
		var stacks [][]string
		if sink != "" {
			stacks = a.graph.CallStacksTo(sink, a.maxCallDepth)
		}

		callStackQueries = append(callStackQueries, model.CallStackQuery{
			ID:         q.ID,
			SQL:        q.SQL,
			QueryType:  q.QueryType,
			CallStacks: stacks,
		})

		for _, stack := range stacks {
			for _, qualifiedMethod := range stack {
				file := fileForQualifiedMethod(qualifiedMethod, a.graph)
				if file == "" {
					continue
				}
				accessFileSet[file] = true
				layer := a.layerOf(file)
				if layerFiles[layer] == nil {
					layerFiles[layer] = make(map[string]bool)
				}
				layerFiles[layer][file] = true
			}
		}

		for _, col := range sqlparse.ExtractColumns(q.SQL, q.QueryType) {
			extraColumns[col] = true
		}
	}

	columns := mergeColumns(target, extraColumns)

	info := model.TableAccessInfo{
		TableName:   tableName,
		Columns:     columns,
		AccessFiles: sortedKeys(accessFileSet),
		QueryType:   majorityQueryType(typeCounts),
		LayerFiles:  make(map[model.Layer][]string, len(layerFiles)),
		SqlQueries:  callStackQueries,
	}
	for layer, files := range layerFiles {
		info.LayerFiles[layer] = sortedKeys(files)
	}
	info.Layer = largestLayer(info.LayerFiles)

	return info
}

func mergeColumns(target config.TargetTable, extra map[string]bool) []model.Column {
	seen := make(map[string]bool)
	var columns []model.Column
	for _, c := range target.Columns {
		seen[c.Name] = true
		columns = append(columns, model.Column{Name: c.Name, NewColumn: false, CryptoCode: c.CryptoCode})
	}
	for col := range extra {
		if seen[col] {
			continue
		}
		seen[col] = true
		columns = append(columns, model.Column{Name: col, NewColumn: false})
	}
	return columns
}

// majorityQueryType picks the most frequent type, tie-breaking
// INSERT > UPDATE > DELETE > SELECT for conservative handling, per spec §4.7.
func majorityQueryType(counts map[model.QueryType]int) model.QueryType {
	priority := []model.QueryType{model.QueryInsert, model.QueryUpdate, model.QueryDelete, model.QuerySelect}

	best := model.QuerySelect
	bestCount := -1
	for _, qt := range priority {
		c := counts[qt]
		if c > bestCount {
			bestCount = c
			best = qt
		}
	}
	return best
}

func largestLayer(layerFiles map[model.Layer][]string) model.Layer {
	var best model.Layer = model.LayerUnknown
	bestCount := -1
	for layer, files := range layerFiles {
		if len(files) > bestCount {
			bestCount = len(files)
			best = layer
		}
	}
	return best
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// fileForQualifiedMethod resolves "Class.method" back to the file that
// declares it, by scanning the call graph's relations for a matching
// caller or callee entry.
func fileForQualifiedMethod(qualified string, g *callgraph.CallGraph) string {
	for _, r := range g.Relations {
		if r.Caller == qualified {
			return r.CallerFile
		}
		if r.Callee == qualified {
			return r.CalleeFile
		}
	}
	return ""
}
