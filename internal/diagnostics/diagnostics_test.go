package diagnostics

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
)

func TestSampledKeepsFirstN(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(3, log.New(&buf, "", 0))
	s := r.Sampled("guard.proto.corrected")

	for i := 0; i < 10; i++ {
		if s.Inc() {
			s.Sample(fmt.Sprintf("event %d", i))
		}
	}

	snap := r.Snapshot()
	if snap.Counters["guard.proto.corrected"] != 10 {
		t.Fatalf("expected 10 hits, got %d", snap.Counters["guard.proto.corrected"])
	}
	if got := snap.Samples["guard.proto.corrected"]; len(got) != 3 || got[0] != "event 0" || got[2] != "event 2" {
		t.Fatalf("unexpected samples: %v", got)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", n, buf.String())
	}
}

func TestCountersAreMonotonicUnderContention(t *testing.T) {
	r := NewRegistry(0, log.New(&bytes.Buffer{}, "", 0))
	c := r.Counter("guard.freeze.cancelled")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()

	if got := r.Snapshot().Counters["guard.freeze.cancelled"]; got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
	if r.Counter("guard.freeze.cancelled") != c {
		t.Fatal("expected the same counter for the same name")
	}
}

func TestCounterPromotedToSampledKeepsValue(t *testing.T) {
	r := NewRegistry(2, log.New(&bytes.Buffer{}, "", 0))
	r.Counter("x").Inc()
	s := r.Sampled("x")
	s.Inc()
	if got := r.Snapshot().Counters["x"]; got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if names := r.Snapshot().Names(); len(names) != 1 || names[0] != "x" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	r.Counter("a").Inc()
	s := r.Sampled("b")
	if s.Inc() {
		t.Fatal("nil sampled counter should never sample")
	}
	s.Sample("ignored")
	if len(r.Snapshot().Counters) != 0 {
		t.Fatal("expected empty snapshot")
	}
}
