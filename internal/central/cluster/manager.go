// Package cluster provisions generator workers as local processes, docker
// containers or kubernetes pods.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	central "globe/internal/central/config"
)

// runtime starts one worker and returns a handle to it.
type runtime interface {
	start(ctx context.Context, cfg *central.Config, w central.Worker) (*process, error)
	shutdown()
}

type Manager struct {
	cfg       *central.Config
	runtime   runtime
	logger    *log.Logger
	mu        sync.RWMutex
	processes map[string]*process
}

type ProcessInfo struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	StoppedAt    *time.Time `json:"stopped_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	DebugAddress string     `json:"debug_address,omitempty"`
	HTTPAddress  string     `json:"http_address,omitempty"`
}

// New picks a runtime for the environment central runs in.
func New(cfg *central.Config) (*Manager, error) {
	logger := log.New(log.Writer(), "cluster ", log.LstdFlags)
	var (
		rt  runtime
		err error
	)
	switch mode := detectRuntimeMode(cfg.Cluster.Mode); mode {
	case runtimeDocker:
		rt, err = newDockerRuntime()
	case runtimeKubernetes:
		rt, err = newKubernetesRuntime()
	default:
		rt = localRuntime{}
	}
	if err != nil {
		return nil, fmt.Errorf("initialise cluster runtime: %w", err)
	}
	return newManager(cfg, rt, logger), nil
}

func newManager(cfg *central.Config, rt runtime, logger *log.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		runtime:   rt,
		logger:    logger,
		processes: make(map[string]*process),
	}
}

func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, w := range m.cfg.Workers {
		if _, exists := m.processes[w.ID]; exists {
			continue
		}
		proc, err := m.runtime.start(ctx, m.cfg, w)
		if err != nil {
			errs = append(errs, fmt.Errorf("worker %s: %w", w.ID, err))
			continue
		}
		m.logger.Printf("worker %s started (origin %d,%d, %d chunks per axis)", w.ID, w.GlobalOrigin.ChunkX, w.GlobalOrigin.ChunkZ, w.ChunksPerAxis)
		m.processes[w.ID] = proc
	}
	return errors.Join(errs...)
}

// Shutdown stops every worker and waits up to ten seconds for each.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	procs := make([]*process, 0, len(m.processes))
	for _, proc := range m.processes {
		procs = append(procs, proc)
	}
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	for _, proc := range procs {
		wg.Add(1)
		go func(p *process) {
			defer wg.Done()
			if err := p.stop(ctx); err != nil {
				m.logger.Printf("worker %s stop: %v", p.cfg.ID, err)
			}
		}(proc)
	}
	wg.Wait()
	m.runtime.shutdown()
}

func (m *Manager) Processes() []ProcessInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProcessInfo, 0, len(m.processes))
	for _, proc := range m.processes {
		out = append(out, proc.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type process struct {
	cfg         central.Worker
	startedAt   time.Time
	doneCh      chan struct{}
	stopFn      func(context.Context) error
	cancelWatch context.CancelFunc

	mutex     sync.RWMutex
	stoppedAt *time.Time
	status    string
	lastError string
	done      bool
}

func newProcess(w central.Worker) *process {
	return &process{
		cfg:       w,
		startedAt: time.Now(),
		doneCh:    make(chan struct{}),
		status:    "starting",
	}
}

func (p *process) setActiveStatus(status string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.done {
		p.status = status
	}
}

// setFinalStatus records how the worker ended. Only the first call counts.
func (p *process) setFinalStatus(status string, err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.done {
		return
	}
	p.done = true
	now := time.Now()
	p.stoppedAt = &now
	p.status = status
	if err != nil {
		p.lastError = err.Error()
	}
	close(p.doneCh)
}

func (p *process) stop(ctx context.Context) error {
	if p.cancelWatch != nil {
		defer p.cancelWatch()
	}
	if p.stopFn == nil {
		return nil
	}
	return p.stopFn(ctx)
}

func (p *process) info() ProcessInfo {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	info := ProcessInfo{
		ID:           p.cfg.ID,
		Status:       p.status,
		StartedAt:    p.startedAt,
		DebugAddress: p.cfg.DebugAddress,
		HTTPAddress:  p.cfg.HTTPAddress,
		LastError:    p.lastError,
	}
	if p.stoppedAt != nil {
		stopped := *p.stoppedAt
		info.StoppedAt = &stopped
	}
	return info
}
