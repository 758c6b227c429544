package callgraph

import (
	"github.com/dominikbraun/graph"

	"github.com/applycrypto/engine/internal/model"
)

// CallGraph is the builder's output: every call relation (resolved and
// unresolved), the endpoints discovered for the configured framework, and
// the strongly-connected components flagged as cycles.
type CallGraph struct {
	Relations []model.CallRelation
	Endpoints []model.Endpoint
	Cycles    [][]string

	adjacency map[string][]model.CallRelation
}

func newCallGraph(relations []model.CallRelation, endpoints []model.Endpoint) *CallGraph {
	cg := &CallGraph{
		Relations: relations,
		Endpoints: endpoints,
		adjacency: make(map[string][]model.CallRelation),
	}
	for _, r := range relations {
		if r.Resolved {
			cg.adjacency[r.Caller] = append(cg.adjacency[r.Caller], r)
		}
	}
	cg.Cycles = detectCycles(relations)
	return cg
}

// detectCycles runs Tarjan's algorithm (via dominikbraun/graph) over the
// deduplicated resolved call graph, per spec §4.6. A true multigraph with
// multiple call sites between the same two methods collapses to one edge
// here — call multiplicity itself is preserved separately in Relations.
func detectCycles(relations []model.CallRelation) [][]string {
	g := graph.New(graph.StringHash, graph.Directed())

	selfLoops := make(map[string]bool)
	for _, r := range relations {
		if !r.Resolved {
			continue
		}
		g.AddVertex(r.Caller)
		g.AddVertex(r.Callee)
		if r.Caller == r.Callee {
			selfLoops[r.Caller] = true
			continue
		}
		_ = g.AddEdge(r.Caller, r.Callee) // ignore duplicate-edge errors: multiplicity is tracked in Relations
	}

	sccs, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil
	}

	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) > 1 {
			cycles = append(cycles, scc)
		} else if len(scc) == 1 && selfLoops[scc[0]] {
			cycles = append(cycles, scc)
		}
	}
	return cycles
}

// CallStacksTo returns every path, from any endpoint, that reaches sink —
// the qualified method name identifying a SQL statement's sink (spec
// §4.7 step 2). Paths are depth-capped and cycle-guarded per path. When no
// endpoint reaches sink, it returns "headless" paths instead, rooted at
// every caller that no resolved relation calls.
func (g *CallGraph) CallStacksTo(sink string, maxDepth int) [][]string {
	var stacks [][]string
	for _, ep := range g.Endpoints {
		visited := map[string]bool{ep.MethodSignature: true}
		g.dfs(ep.MethodSignature, sink, []string{ep.MethodSignature}, visited, maxDepth, &stacks)
	}
	if len(stacks) > 0 {
		return stacks
	}
	called := make(map[string]bool)
	for _, r := range g.Relations {
		if r.Resolved {
			called[r.Callee] = true
		}
	}
	rooted := make(map[string]bool)
	for _, r := range g.Relations {
		if !r.Resolved || called[r.Caller] || rooted[r.Caller] {
			continue
		}
		rooted[r.Caller] = true
		g.dfs(r.Caller, sink, []string{r.Caller}, map[string]bool{r.Caller: true}, maxDepth, &stacks)
	}
	return stacks
}

func (g *CallGraph) dfs(current, sink string, path []string, visited map[string]bool, depthLeft int, out *[][]string) {
	if current == sink {
		*out = append(*out, append([]string(nil), path...))
		return
	}
	if depthLeft <= 0 {
		return
	}

	for _, rel := range g.adjacency[current] {
		if visited[rel.Callee] {
			continue
		}
		visited[rel.Callee] = true
		g.dfs(rel.Callee, sink, append(path, rel.Callee), visited, depthLeft-1, out)
		delete(visited, rel.Callee)
	}
}
