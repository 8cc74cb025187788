package lps

import "context"

// representative returns s's canonical representative in the
// strongly-connected component formed by prioritised-tau transitions
// reachable from s (spec.md §4.5 "Confluent-tau reduction"), computed
// via Tarjan's SCC algorithm over that subgraph.
func (g *Generator) representative(ctx context.Context, s State) State {
	tj := &tarjan{
		ctx: ctx, g: g,
		indices: map[string]int{}, lowlink: map[string]int{}, onStack: map[string]bool{},
		repOf: map[string]State{},
	}
	tj.strongconnect(s)
	if rep, ok := tj.repOf[stateKey(s)]; ok {
		return rep
	}
	return s
}

type tarjan struct {
	ctx     context.Context
	g       *Generator
	index   int
	indices map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []State
	repOf   map[string]State
}

func (tj *tarjan) strongconnect(v State) {
	key := stateKey(v)
	tj.indices[key] = tj.index
	tj.lowlink[key] = tj.index
	tj.index++
	tj.stack = append(tj.stack, v)
	tj.onStack[key] = true

	base, enabled := tj.g.fire(v, true)
	for _, f := range enabled {
		for _, sol := range f.sols {
			_, w := tj.g.fireOne(base, f, sol)
			wkey := stateKey(w)
			if _, seen := tj.indices[wkey]; !seen {
				tj.strongconnect(w)
				if tj.lowlink[wkey] < tj.lowlink[key] {
					tj.lowlink[key] = tj.lowlink[wkey]
				}
			} else if tj.onStack[wkey] {
				if tj.indices[wkey] < tj.lowlink[key] {
					tj.lowlink[key] = tj.indices[wkey]
				}
			}
		}
	}

	if tj.lowlink[key] == tj.indices[key] {
		var scc []State
		for {
			n := len(tj.stack) - 1
			w := tj.stack[n]
			tj.stack = tj.stack[:n]
			tj.onStack[stateKey(w)] = false
			scc = append(scc, w)
			if stateKey(w) == key {
				break
			}
		}
		rep := canonicalRep(scc)
		for _, w := range scc {
			tj.repOf[stateKey(w)] = rep
		}
	}
}

func canonicalRep(scc []State) State {
	best := scc[0]
	bestKey := stateKey(best)
	for _, s := range scc[1:] {
		if k := stateKey(s); k < bestKey {
			best, bestKey = s, k
		}
	}
	return best
}
