package lps

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileOptions is the YAML-decodable form of spec.md §6's state-space
// options document: exploration strategy, maximum state count, maximum
// trace count, an optional priority action name, bit-hash size, initial
// table size, todo-queue size, and booleans for deadlock detection,
// action detection, and error-trace capture.
//
// FileOptions is distinct from ExploreOptions: the former is what a
// collaborator writes to disk, the latter is what Explore consumes.
// MaxTraceCount and InitialTableSize have no direct ExploreOptions
// counterpart — the first bounds how many Detections a caller retains
// from a Report, the second sizes a term.Table before Explore runs —
// and ToExploreOptions does not carry them; a caller reads them from
// FileOptions directly.
type FileOptions struct {
	Strategy          string   `yaml:"strategy"`
	MaxStates         int      `yaml:"max_states"`
	MaxTraceCount     int      `yaml:"max_trace_count"`
	PriorityAction    string   `yaml:"priority_action"`
	BitHashSize       int      `yaml:"bit_hash_size"`
	InitialTableSize  int      `yaml:"initial_table_size"`
	TodoQueueSize     int      `yaml:"todo_queue_size"`
	DeadlockDetection bool     `yaml:"deadlock_detection"`
	ActionDetection   []string `yaml:"action_detection"`
	ErrorTraceCapture bool     `yaml:"error_trace_capture"`
	Workers           int      `yaml:"workers"`
	Seed              uint64   `yaml:"seed"`
}

// ParseFileOptions decodes a state-space options document (spec.md §6)
// from YAML text.
func ParseFileOptions(data []byte) (FileOptions, error) {
	var fo FileOptions
	if err := yaml.Unmarshal(data, &fo); err != nil {
		return FileOptions{}, errors.Wrap(err, "decoding state-space options")
	}
	return fo, nil
}

// ParseStrategyName converts the textual strategy name into a
// Strategy. Unrecognised strings are an error, per spec.md §6's
// "unrecognised strings are an error" (stated there for the rewrite
// strategy selector; applied here by the same discipline).
func ParseStrategyName(s string) (Strategy, error) {
	switch s {
	case "breadth":
		return Breadth, nil
	case "depth":
		return Depth, nil
	case "random":
		return Random, nil
	default:
		return 0, errors.Errorf("lps: unrecognised exploration strategy %q", s)
	}
}

// ToExploreOptions builds the runtime ExploreOptions this FileOptions
// describes, along with the parsed Strategy. MaxTraceCount,
// InitialTableSize, PriorityAction and DeadlockDetection are not part
// of the result.
func (fo FileOptions) ToExploreOptions() (Strategy, ExploreOptions, error) {
	strat, err := ParseStrategyName(fo.Strategy)
	if err != nil {
		return 0, ExploreOptions{}, err
	}
	var detect map[string]bool
	if len(fo.ActionDetection) > 0 {
		detect = make(map[string]bool, len(fo.ActionDetection))
		for _, a := range fo.ActionDetection {
			detect[a] = true
		}
	}
	return strat, ExploreOptions{
		MaxStates:     fo.MaxStates,
		DetectActions: detect,
		Trace:         fo.ErrorTraceCapture,
		BitHashSize:   fo.BitHashSize,
		TodoQueueSize: fo.TodoQueueSize,
		Seed:          fo.Seed,
		Workers:       fo.Workers,
	}, nil
}
