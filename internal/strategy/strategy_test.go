package strategy_test

import (
	"strings"
	"testing"

	"github.com/torosent/syncbench/internal/counter"
	"github.com/torosent/syncbench/internal/strategy"
)

func TestCatalogOrderMatchesDefaultSequence(t *testing.T) {
	want := []string{"NonAtomic", "SingleThreaded", "Relaxed", "Acquire", "Release", "AcquireRelease", "Sequential", "WithMutex"}
	got := strategy.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("catalog[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	c := strategy.Catalog()
	c[0].Label = "mutated"
	if strategy.Catalog()[0].Label != "NonAtomic" {
		t.Fatal("Catalog() must not expose internal state")
	}
}

func TestStrategyProperties(t *testing.T) {
	tests := []struct {
		kind       strategy.Kind
		concurrent bool
		exact      bool
		atomic     bool
	}{
		{strategy.NonAtomic, true, false, false},
		{strategy.SingleThreaded, false, true, false},
		{strategy.AtomicRelaxed, true, true, true},
		{strategy.AtomicAcquire, true, true, true},
		{strategy.AtomicRelease, true, true, true},
		{strategy.AtomicAcqRel, true, true, true},
		{strategy.AtomicSeqCst, true, true, true},
		{strategy.Mutex, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, ok := strategy.Lookup(tt.kind)
			if !ok {
				t.Fatalf("Lookup(%s) failed", tt.kind)
			}
			if s.Concurrent() != tt.concurrent {
				t.Errorf("Concurrent() = %v, want %v", s.Concurrent(), tt.concurrent)
			}
			if s.Exact() != tt.exact {
				t.Errorf("Exact() = %v, want %v", s.Exact(), tt.exact)
			}
			if s.Atomic() != tt.atomic {
				t.Errorf("Atomic() = %v, want %v", s.Atomic(), tt.atomic)
			}
		})
	}
}

func TestIncrementerAddsOne(t *testing.T) {
	for _, s := range strategy.Catalog() {
		c := counter.New()
		inc := s.Incrementer()
		for i := 0; i < 10; i++ {
			inc(c)
		}
		if got := c.Load(); got != 10 {
			t.Errorf("%s: expected 10, got %d", s.Label, got)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  strategy.Kind
	}{
		{"NonAtomic", strategy.NonAtomic},
		{"racy", strategy.NonAtomic},
		{"single-threaded", strategy.SingleThreaded},
		{"relaxed", strategy.AtomicRelaxed},
		{"atomic_relaxed", strategy.AtomicRelaxed},
		{"ACQUIRE", strategy.AtomicAcquire},
		{"release", strategy.AtomicRelease},
		{"acq_rel", strategy.AtomicAcqRel},
		{"AcquireRelease", strategy.AtomicAcqRel},
		{"seq_cst", strategy.AtomicSeqCst},
		{"sequential", strategy.AtomicSeqCst},
		{"WithMutex", strategy.Mutex},
		{" mutex ", strategy.Mutex},
	}

	for _, tt := range tests {
		got, err := strategy.Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.input, err)
			continue
		}
		if got.Kind != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.input, got.Kind, tt.want)
		}
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "spinlock", "consume"} {
		if _, err := strategy.Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestSelectEmptyReturnsCatalog(t *testing.T) {
	got, err := strategy.Select(nil)
	if err != nil {
		t.Fatalf("Select(nil) error = %v", err)
	}
	if len(got) != len(strategy.Catalog()) {
		t.Fatalf("expected full catalog, got %d entries", len(got))
	}
}

func TestSelectPreservesInputOrder(t *testing.T) {
	got, err := strategy.Select([]string{"mutex", "relaxed", "single"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := []strategy.Kind{strategy.Mutex, strategy.AtomicRelaxed, strategy.SingleThreaded}
	for i := range want {
		if got[i].Kind != want[i] {
			t.Errorf("selected[%d] = %s, want %s", i, got[i].Kind, want[i])
		}
	}
}

func TestSelectRejectsDuplicatesAndUnknown(t *testing.T) {
	_, err := strategy.Select([]string{"relaxed", "atomic_relaxed", "bogus"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "already selected") {
		t.Errorf("expected duplicate issue, got %q", msg)
	}
	if !strings.Contains(msg, "bogus") {
		t.Errorf("expected unknown issue, got %q", msg)
	}
}

func TestKindStringOutOfRange(t *testing.T) {
	if got := strategy.Kind(99).String(); got != "Kind(99)" {
		t.Errorf("unexpected String() = %q", got)
	}
}
