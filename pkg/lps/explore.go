package lps

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/gitrdm/rewrcore/internal/parallel"
)

// Strategy selects a state-space exploration order (spec.md §4.5
// "Exploration strategies").
type Strategy int

const (
	// Breadth explores a FIFO level queue, optionally bounded by
	// ExploreOptions.MaxLevel.
	Breadth Strategy = iota
	// Depth explores an explicit stack bounded by ExploreOptions.TodoMax;
	// stays single-threaded because stack order is the
	// correctness-relevant invariant for depth-first traversal.
	Depth
	// Random explores the frontier in a uniformly random pick order
	// each step, seeded by ExploreOptions.Seed for reproducibility.
	Random
)

// TraceWriter serialises a reconstructed run from the initial state to
// a detected state (spec.md §4.5 "tracing"); the on-disk format is a
// collaborator's concern.
type TraceWriter interface {
	WriteTrace(ctx context.Context, trace []MultiAction) error
}

// Detection records one occurrence of a detect action.
type Detection struct {
	Action string
	State  State
}

// ExploreOptions parameterises Explore (spec.md §4.5, plus the
// bit-hash-size/todo-queue-size split pkg/lps inherits from
// original_source's libnextstate.cpp/nextstate_standard.cpp).
type ExploreOptions struct {
	MaxStates     int
	MaxLevel      int  // Breadth only; 0 = unbounded
	TodoMax       int  // Depth only; 0 = unbounded
	DetectActions map[string]bool
	Trace         bool
	TraceWriter   TraceWriter
	BitHashSize   int // 0 disables bit-hash mode
	TodoQueueSize int // advisory todo-queue capacity hint, independent of BitHashSize
	Seed          uint64
	Workers       int // parallel dispatch width for Breadth/Random; 0 = sequential
}

// Report summarises one Explore run.
type Report struct {
	StatesVisited int
	Deadlocks     []State
	Detections    []Detection
	Truncated     bool
}

type backPointer struct {
	from   State
	action MultiAction
}

// visitedSet tracks which states have already been explored, either
// precisely (a key set) or via an optional bit-hash table (spec.md
// §4.5: "state index becomes the hash; back-pointers remain precise
// because they are recorded only for the paths actually traversed").
type visitedSet struct {
	exact   map[string]bool
	bits    []bool
}

func newVisitedSet(bitHashSize int) *visitedSet {
	vs := &visitedSet{exact: map[string]bool{}}
	if bitHashSize > 0 {
		vs.bits = make([]bool, bitHashSize)
	}
	return vs
}

func (vs *visitedSet) visit(key string) bool {
	if vs.bits != nil {
		idx := bitIndex(key, len(vs.bits))
		if vs.bits[idx] {
			return false
		}
		vs.bits[idx] = true
		return true
	}
	if vs.exact[key] {
		return false
	}
	vs.exact[key] = true
	return true
}

func bitIndex(key string, size int) int {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return int(h % uint32(size))
}

// Explore drives Generator g from its initial state under strategy,
// stopping at the first of ExploreOptions.MaxStates, exhausting the
// reachable space, or ctx's deadline (spec.md §4.5).
func Explore(ctx context.Context, g *Generator, strategy Strategy, opts ExploreOptions) (*Report, error) {
	rep := &Report{}
	visited := newVisitedSet(opts.BitHashSize)
	back := map[string]backPointer{}

	init := g.InitialState()
	visited.visit(stateKey(init))
	rep.StatesVisited = 1

	recordDeadlockAndDetect := func(s State, successors []successorPair) {
		if len(successors) == 0 {
			rep.Deadlocks = append(rep.Deadlocks, s)
		}
		for _, succ := range successors {
			if opts.DetectActions[succ.ma.Name] {
				rep.Detections = append(rep.Detections, Detection{Action: succ.ma.Name, State: succ.next})
				if opts.Trace && opts.TraceWriter != nil {
					opts.TraceWriter.WriteTrace(ctx, reconstructTrace(back, s, succ.ma, succ.next))
				}
			}
		}
	}

	switch strategy {
	case Depth:
		stack := []State{init}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			if opts.TodoMax > 0 && len(stack) > opts.TodoMax {
				rep.Truncated = true
				break
			}
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			succs := collectSuccessors(ctx, g, s)
			recordDeadlockAndDetect(s, succs)
			for _, succ := range succs {
				if !visited.visit(stateKey(succ.next)) {
					continue
				}
				rep.StatesVisited++
				back[stateKey(succ.next)] = backPointer{from: s, action: succ.ma}
				if opts.MaxStates > 0 && rep.StatesVisited >= opts.MaxStates {
					rep.Truncated = true
					return rep, nil
				}
				stack = append(stack, succ.next)
			}
		}

	case Breadth, Random:
		var rnd *rand.Rand
		if strategy == Random {
			rnd = rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
		}
		frontier := []State{init}
		level := 0
		for len(frontier) > 0 {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			if opts.MaxLevel > 0 && strategy == Breadth && level > opts.MaxLevel {
				rep.Truncated = true
				break
			}

			ordered := frontier
			if strategy == Random {
				ordered = shuffled(rnd, frontier)
			}

			allSuccs := dispatchSuccessors(ctx, g, ordered, opts.Workers)

			var next []State
			for i, s := range ordered {
				succs := allSuccs[i]
				recordDeadlockAndDetect(s, succs)
				for _, succ := range succs {
					if !visited.visit(stateKey(succ.next)) {
						continue
					}
					rep.StatesVisited++
					back[stateKey(succ.next)] = backPointer{from: s, action: succ.ma}
					if opts.MaxStates > 0 && rep.StatesVisited >= opts.MaxStates {
						rep.Truncated = true
						return rep, nil
					}
					next = append(next, succ.next)
				}
			}
			frontier = next
			level++
		}
	}

	return rep, nil
}

type successorPair struct {
	ma   MultiAction
	next State
}

func collectSuccessors(ctx context.Context, g *Generator, s State) []successorPair {
	var out []successorPair
	for ma, next := range g.Successors(ctx, s) {
		out = append(out, successorPair{ma: ma, next: next})
	}
	return out
}

// dispatchSuccessors computes each state's successor list, optionally
// fanned across internal/parallel.WorkerPool workers (spec.md §5's explicit
// concurrency allowance for disjoint generator tasks): each worker
// reduces through the same *rewrite.Engine, which is read-only during
// exploration (no AddRule calls run concurrently with Explore), so no
// additional locking is required here beyond the engine's own.
func dispatchSuccessors(ctx context.Context, g *Generator, states []State, workers int) [][]successorPair {
	out := make([][]successorPair, len(states))
	if workers <= 1 || len(states) <= 1 {
		for i, s := range states {
			out[i] = collectSuccessors(ctx, g, s)
		}
		return out
	}

	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()
	var wg sync.WaitGroup
	for i, s := range states {
		i, s := i, s
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			out[i] = collectSuccessors(ctx, g, s)
		})
		if err != nil {
			wg.Done()
			out[i] = collectSuccessors(ctx, g, s)
		}
	}
	wg.Wait()
	return out
}

func shuffled(rnd *rand.Rand, states []State) []State {
	out := append([]State(nil), states...)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// reconstructTrace follows back-pointers from the initial state to s,
// then appends the detected final step (spec.md §4.5 "tracing").
func reconstructTrace(back map[string]backPointer, from State, finalAction MultiAction, detected State) []MultiAction {
	var rev []MultiAction
	cur := stateKey(from)
	for {
		bp, ok := back[cur]
		if !ok {
			break
		}
		rev = append(rev, bp.action)
		cur = stateKey(bp.from)
	}
	trace := make([]MultiAction, len(rev))
	for i, a := range rev {
		trace[len(rev)-1-i] = a
	}
	return append(trace, finalAction)
}
