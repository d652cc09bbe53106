// Package diagnostics keeps process-wide counters and the first few samples
// of noteworthy events for operators. Nothing here is authoritative and all
// of it is lost on restart.
package diagnostics

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// DefaultSampleLimit bounds how many occurrences of an event are logged.
const DefaultSampleLimit = 16

// Counter is a monotonic counter.
type Counter struct {
	name  string
	value atomic.Uint64
}

func (c *Counter) Inc() uint64 {
	if c == nil {
		return 0
	}
	return c.value.Add(1)
}

func (c *Counter) Load() uint64 {
	if c == nil {
		return 0
	}
	return c.value.Load()
}

func (c *Counter) Name() string { return c.name }

// Sampled counts events and retains the first limit of them.
type Sampled struct {
	Counter
	limit  uint64
	logger *log.Logger

	mu      sync.Mutex
	samples []string
}

// Inc counts one occurrence and reports whether it falls within the sample
// limit. Callers only build a sample message when it does.
func (s *Sampled) Inc() bool {
	if s == nil {
		return false
	}
	return s.value.Add(1) <= s.limit
}

// Sample records and logs msg while fewer than limit samples are held.
func (s *Sampled) Sample(msg string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if uint64(len(s.samples)) >= s.limit {
		s.mu.Unlock()
		return
	}
	s.samples = append(s.samples, msg)
	n := len(s.samples)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Printf("%s [%d/%d]: %s", s.name, n, s.limit, msg)
	}
}

func (s *Sampled) Samples() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.samples))
	copy(out, s.samples)
	return out
}

// Snapshot is a point-in-time copy of a registry.
type Snapshot struct {
	Counters map[string]uint64   `json:"counters"`
	Samples  map[string][]string `json:"samples,omitempty"`
}

// Names returns the counter names in order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Counters))
	for name := range s.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry owns named counters. Lookups take a lock, so hot paths should
// resolve their counters once and keep the pointers.
type Registry struct {
	limit  uint64
	logger *log.Logger

	mu       sync.Mutex
	counters map[string]*Counter
	sampled  map[string]*Sampled
}

func NewRegistry(limit int, logger *log.Logger) *Registry {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	if logger == nil {
		logger = log.New(log.Writer(), "diag ", log.LstdFlags)
	}
	return &Registry{
		limit:    uint64(limit),
		logger:   logger,
		counters: make(map[string]*Counter),
		sampled:  make(map[string]*Sampled),
	}
}

// Counter returns the counter called name, creating it on first use.
func (r *Registry) Counter(name string) *Counter {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sampled[name]; ok {
		return &s.Counter
	}
	c, ok := r.counters[name]
	if !ok {
		c = &Counter{name: name}
		r.counters[name] = c
	}
	return c
}

// Sampled returns the sampled counter called name, creating it on first use.
func (r *Registry) Sampled(name string) *Sampled {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sampled[name]
	if !ok {
		s = &Sampled{Counter: Counter{name: name}, limit: r.limit, logger: r.logger}
		if c, exists := r.counters[name]; exists {
			s.value.Store(c.Load())
			delete(r.counters, name)
		}
		r.sampled[name] = s
	}
	return s
}

func (r *Registry) Snapshot() Snapshot {
	out := Snapshot{Counters: map[string]uint64{}, Samples: map[string][]string{}}
	if r == nil {
		return out
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, c := range r.counters {
		out.Counters[name] = c.Load()
	}
	for name, s := range r.sampled {
		out.Counters[name] = s.Load()
		if samples := s.Samples(); len(samples) > 0 {
			out.Samples[name] = samples
		}
	}
	return out
}
