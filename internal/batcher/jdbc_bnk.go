package batcher

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// JdbcBnkStrategy implements the JDBC / BNK online ("Banka") grouping of
// spec §4.8: the same keyword-based grouping as JdbcAnyframeStrategy, but
// a BIZ file is priced only for the methods actually named on one of the
// table's call stacks, never its whole body — avoiding over-estimation
// when a BIZ class is large but only a few methods are reached.
type JdbcBnkStrategy struct {
	FS       FileSystem
	Estimate TokenEstimator
}

func (s JdbcBnkStrategy) Group(info model.TableAccessInfo, idx *ProjectIndex, outputs []model.SqlExtractionOutput) []FileGroup {
	base := JdbcAnyframeStrategy{}.Group(info, idx, outputs)

	estimate := s.Estimate
	if estimate == nil {
		estimate = DefaultTokenEstimator
	}
	reached := reachedMethodNamesByFile(info, idx)

	for i := range base {
		override := make(map[string]int)
		for _, f := range base[i].ModifiableFiles {
			names, ok := reached[f]
			if !ok {
				continue
			}
			cost, err := s.chargeMethods(idx, f, names, estimate)
			if err != nil {
				continue
			}
			override[f] = cost
		}
		base[i].PriceOverride = override
	}
	return base
}

// reachedMethodNamesByFile maps each file to the set of method names
// named on one of info's call stacks whose declaring class resolves to
// that file.
func reachedMethodNamesByFile(info model.TableAccessInfo, idx *ProjectIndex) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, q := range info.SqlQueries {
		for _, stack := range q.CallStacks {
			for _, qualified := range stack {
				parts := strings.SplitN(qualified, ".", 2)
				if len(parts) != 2 {
					continue
				}
				className, methodName := parts[0], parts[1]
				for _, f := range idx.FilesForSimpleName(className) {
					if out[f] == nil {
						out[f] = make(map[string]bool)
					}
					out[f][methodName] = true
				}
			}
		}
	}
	return out
}

// chargeMethods prices only the line ranges of the named methods within
// file, per JavaAstParser's recorded line spans.
func (s JdbcBnkStrategy) chargeMethods(idx *ProjectIndex, file string, methodNames map[string]bool, estimate TokenEstimator) (int, error) {
	raw, err := s.FS.ReadFile(file)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(string(raw), "\n")

	total := 0
	for name := range methodNames {
		for _, m := range idx.MethodsByName(file, name) {
			start, end := m.LineNumber, m.EndLineNumber
			if start < 1 {
				start = 1
			}
			if end > len(lines) {
				end = len(lines)
			}
			if end < start {
				continue
			}
			total += estimate(strings.Join(lines[start-1:end], "\n"))
		}
	}
	return total, nil
}
