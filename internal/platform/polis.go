package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"spikejump/internal/logging"
	"spikejump/internal/morphology"
	"spikejump/internal/scape"
	"spikejump/internal/storage"
)

type Config struct {
	Store  storage.Store
	Logger *slog.Logger
	// Scapes are registered on Init in addition to the spike-jump scape.
	Scapes []scape.Scape
}

// Polis owns the store and the registered scapes, and runs spike-jump
// sessions against them.
type Polis struct {
	store  storage.Store
	logger *slog.Logger

	mu      sync.RWMutex
	scapes  map[string]scape.Scape
	runs    map[string]context.CancelFunc
	started bool

	config Config
}

func NewPolis(cfg Config) *Polis {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Polis{
		store:  cfg.Store,
		logger: logger,
		scapes: make(map[string]scape.Scape),
		runs:   make(map[string]context.CancelFunc),
		config: cfg,
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}

	scapes := append([]scape.Scape{scape.SpikeJumpScape{Logger: p.logger}}, p.config.Scapes...)
	registered := make(map[string]scape.Scape, len(scapes))
	for i, s := range scapes {
		if s == nil {
			return fmt.Errorf("scape is nil at index %d", i)
		}
		name := s.Name()
		if name == "" {
			return fmt.Errorf("scape name is required at index %d", i)
		}
		if _, exists := registered[name]; exists {
			return fmt.Errorf("duplicate scape: %s", name)
		}
		if err := morphology.EnsureScapeCompatibility(name); err != nil {
			return fmt.Errorf("scape %s: %w", name, err)
		}
		registered[name] = s
	}

	p.scapes = registered
	p.started = true
	p.logger.Debug("polis started", "scapes", len(registered))
	return nil
}

func (p *Polis) RegisterScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}

	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	p.scapes[name] = s
	return nil
}

func (p *Polis) GetScape(name string) (scape.Scape, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.scapes[name]
	return s, ok
}

func (p *Polis) RegisteredScapes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.scapes))
	for name := range p.scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Polis) Store() storage.Store {
	return p.store
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

// Stop cancels every active run and unregisters the scapes.
func (p *Polis) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.runs {
		cancel()
	}
	p.runs = make(map[string]context.CancelFunc)
	p.scapes = make(map[string]scape.Scape)
	p.started = false
}

// StopRun cancels one active run; the run returns context.Canceled.
func (p *Polis) StopRun(runID string) error {
	p.mu.RLock()
	cancel, ok := p.runs[runID]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	cancel()
	return nil
}

func (p *Polis) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.runs))
	for id := range p.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Polis) registerRun(ctx context.Context, runID string) (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil, fmt.Errorf("polis is not initialized")
	}
	if _, exists := p.runs[runID]; exists {
		return nil, fmt.Errorf("run already active: %s", runID)
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.runs[runID] = cancel
	return runCtx, nil
}

func (p *Polis) unregisterRun(runID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.runs[runID]; ok {
		cancel()
		delete(p.runs, runID)
	}
}
