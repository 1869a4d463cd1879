// Package strategy defines the closed set of counter synchronization
// strategies a benchmark trial can exercise.
package strategy

import (
	"fmt"
	"strings"

	"github.com/torosent/syncbench/internal/counter"
)

// Kind identifies one synchronization strategy.
type Kind int

const (
	NonAtomic Kind = iota
	SingleThreaded
	AtomicRelaxed
	AtomicAcquire
	AtomicRelease
	AtomicAcqRel
	AtomicSeqCst
	Mutex
)

var kindNames = [...]string{
	NonAtomic:      "NonAtomic",
	SingleThreaded: "SingleThreaded",
	AtomicRelaxed:  "AtomicRelaxed",
	AtomicAcquire:  "AtomicAcquire",
	AtomicRelease:  "AtomicRelease",
	AtomicAcqRel:   "AtomicAcqRel",
	AtomicSeqCst:   "AtomicSeqCst",
	Mutex:          "Mutex",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText renders the kind by name in JSON and YAML reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MemoryOrder is the ordering contract an atomic strategy is tagged with.
type MemoryOrder string

const (
	OrderNone    MemoryOrder = ""
	OrderRelaxed MemoryOrder = "relaxed"
	OrderAcquire MemoryOrder = "acquire"
	OrderRelease MemoryOrder = "release"
	OrderAcqRel  MemoryOrder = "acq_rel"
	OrderSeqCst  MemoryOrder = "seq_cst"
)

// Strategy is one entry of the catalog. The zero value is NonAtomic.
type Strategy struct {
	Kind  Kind        `json:"kind" yaml:"kind"`
	Label string      `json:"label" yaml:"label"`
	Order MemoryOrder `json:"memory_order,omitempty" yaml:"memory_order,omitempty"`
}

// Concurrent reports whether the strategy runs on a pool of workers.
func (s Strategy) Concurrent() bool {
	return s.Kind != SingleThreaded
}

// Exact reports whether the strategy always produces threads*iterations.
func (s Strategy) Exact() bool {
	return s.Kind != NonAtomic
}

// Atomic reports whether the strategy increments with a fetch-and-add.
func (s Strategy) Atomic() bool {
	return s.Order != OrderNone
}

// Incrementer returns the operation one worker applies per iteration.
//
// sync/atomic only offers sequentially consistent operations, so every
// memory order maps to the same fetch-and-add. The order stays on the
// Strategy as a label for the report.
func (s Strategy) Incrementer() func(*counter.Shared) {
	switch {
	case s.Kind == Mutex:
		return (*counter.Shared).IncrementLocked
	case s.Atomic():
		return (*counter.Shared).IncrementAtomic
	default:
		return (*counter.Shared).IncrementUnsynchronized
	}
}

func (s Strategy) String() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Kind.String()
}

var catalog = []Strategy{
	{Kind: NonAtomic, Label: "NonAtomic"},
	{Kind: SingleThreaded, Label: "SingleThreaded"},
	{Kind: AtomicRelaxed, Label: "Relaxed", Order: OrderRelaxed},
	{Kind: AtomicAcquire, Label: "Acquire", Order: OrderAcquire},
	{Kind: AtomicRelease, Label: "Release", Order: OrderRelease},
	{Kind: AtomicAcqRel, Label: "AcquireRelease", Order: OrderAcqRel},
	{Kind: AtomicSeqCst, Label: "Sequential", Order: OrderSeqCst},
	{Kind: Mutex, Label: "WithMutex"},
}

// Catalog returns the default benchmark sequence.
func Catalog() []Strategy {
	return append([]Strategy(nil), catalog...)
}

// Lookup returns the catalog entry for kind.
func Lookup(kind Kind) (Strategy, bool) {
	for _, s := range catalog {
		if s.Kind == kind {
			return s, true
		}
	}
	return Strategy{}, false
}

// Parse resolves a strategy by label, kind name or memory order, ignoring
// case, dashes and underscores ("relaxed", "atomic_relaxed", "WithMutex").
func Parse(name string) (Strategy, error) {
	key := normalizeName(name)
	if key == "" {
		return Strategy{}, fmt.Errorf("empty strategy name")
	}
	for _, s := range catalog {
		if key == normalizeName(s.Label) || key == normalizeName(s.Kind.String()) {
			return s, nil
		}
		if s.Order != OrderNone && key == normalizeName(string(s.Order)) {
			return s, nil
		}
	}
	if alias, ok := aliases[key]; ok {
		s, _ := Lookup(alias)
		return s, nil
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q", name)
}

var aliases = map[string]Kind{
	"single": SingleThreaded,
	"unsafe": NonAtomic,
	"racy":   NonAtomic,
}

// Select resolves names in the given order. An empty list selects the whole
// catalog.
func Select(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return Catalog(), nil
	}

	var issues []string
	seen := make(map[Kind]int, len(names))
	selected := make([]Strategy, 0, len(names))
	for idx, name := range names {
		s, err := Parse(name)
		if err != nil {
			issues = append(issues, fmt.Sprintf("strategies[%d]: %v", idx, err))
			continue
		}
		if prev, ok := seen[s.Kind]; ok {
			issues = append(issues, fmt.Sprintf("strategies[%d]: %s already selected at index %d", idx, s.Label, prev))
			continue
		}
		seen[s.Kind] = idx
		selected = append(selected, s)
	}
	if len(issues) > 0 {
		return nil, fmt.Errorf("invalid strategies: %s", strings.Join(issues, "; "))
	}
	return selected, nil
}

// Names returns the labels of the default sequence.
func Names() []string {
	names := make([]string, len(catalog))
	for i, s := range catalog {
		names[i] = s.Label
	}
	return names
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}
