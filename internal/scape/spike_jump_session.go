package scape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"spikejump/internal/logging"
)

var (
	ErrInvalidConfiguration = errors.New("invalid spike-jump configuration")
	ErrInvalidPolicyOutput  = errors.New("invalid policy output")
)

const (
	DefaultLaneWidth     = 1500.0
	DefaultLaneHeight    = 300.0
	DefaultObstacleCount = 5
)

// SpikeJumpConfig is the configuration object of one session.
type SpikeJumpConfig struct {
	LaneWidth     float64
	LaneHeight    float64
	ObstacleCount int
	// RosterSize, when > 0, must match the number of entrants.
	RosterSize int
	// MaxTicks caps the run; 0 runs until the roster is empty.
	MaxTicks int
	Seed     int64
}

func DefaultSpikeJumpConfig() SpikeJumpConfig {
	return SpikeJumpConfig{
		LaneWidth:     DefaultLaneWidth,
		LaneHeight:    DefaultLaneHeight,
		ObstacleCount: DefaultObstacleCount,
	}
}

func (c SpikeJumpConfig) Validate(entrants int) error {
	if c.LaneWidth <= 0 || c.LaneHeight <= 0 {
		return fmt.Errorf("%w: lane dimensions must be > 0, got %gx%g", ErrInvalidConfiguration, c.LaneWidth, c.LaneHeight)
	}
	if c.ObstacleCount <= 0 {
		return fmt.Errorf("%w: obstacle count must be > 0, got %d", ErrInvalidConfiguration, c.ObstacleCount)
	}
	if c.RosterSize < 0 {
		return fmt.Errorf("%w: roster size must be >= 0, got %d", ErrInvalidConfiguration, c.RosterSize)
	}
	if c.RosterSize > 0 && c.RosterSize != entrants {
		return fmt.Errorf("%w: roster size %d does not match %d entrants", ErrInvalidConfiguration, c.RosterSize, entrants)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("%w: max ticks must be >= 0, got %d", ErrInvalidConfiguration, c.MaxTicks)
	}
	return nil
}

// FrameSink receives a read-only snapshot after every tick. Sinks only
// observe; nothing they do feeds back into the simulation.
type FrameSink interface {
	Draw(frame Frame)
}

type Frame struct {
	Tick       int
	LaneWidth  float64
	LaneHeight float64
	HighScore  int
	Spikes     []Rect
	Jumpers    []JumperView
}

type JumperView struct {
	ID      string
	Rect    Rect
	Jumping bool
	Score   int
}

type Result struct {
	HighScore    int           `json:"high_score"`
	Ticks        int           `json:"ticks"`
	Recycles     int           `json:"recycles"`
	Truncated    bool          `json:"truncated"`
	Eliminations []Elimination `json:"eliminations"`
	// Survivors are the jumpers still active when the run stopped, in
	// roster order. Empty unless the run was truncated or cancelled.
	Survivors []Standing `json:"survivors,omitempty"`
}

type Standing struct {
	AgentID string `json:"agent_id"`
	Score   int    `json:"score"`
}

func (r Result) Trace() Trace {
	return Trace{
		"high_score":   r.HighScore,
		"ticks":        r.Ticks,
		"recycles":     r.Recycles,
		"truncated":    r.Truncated,
		"eliminations": len(r.Eliminations),
	}
}

type SessionOption func(*sessionOptions)

type sessionOptions struct {
	logger *slog.Logger
	sink   FrameSink
	rng    *rand.Rand
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithFrameSink(sink FrameSink) SessionOption {
	return func(o *sessionOptions) {
		o.sink = sink
	}
}

// WithRand overrides the seeded random source used for spike placement.
func WithRand(rng *rand.Rand) SessionOption {
	return func(o *sessionOptions) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// Session is one run of the lane: a fresh spike field and fresh jumpers for
// a batch of entrants.
type Session struct {
	cfg    SpikeJumpConfig
	engine *TickEngine
	sink   FrameSink
	logger *slog.Logger
}

func NewSession(cfg SpikeJumpConfig, entrants []Entrant, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(len(entrants)); err != nil {
		return nil, err
	}
	options := sessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = logging.Discard()
	}
	if options.rng == nil {
		options.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	roster := make([]rosterEntry, 0, len(entrants))
	for i, entrant := range entrants {
		if entrant.Policy == nil {
			return nil, fmt.Errorf("%w: entrant %d has no policy", ErrInvalidConfiguration, i)
		}
		if entrant.Fitness == nil {
			return nil, fmt.Errorf("%w: entrant %d has no fitness accumulator", ErrInvalidConfiguration, i)
		}
		id := entrant.Policy.ID()
		if id == "" {
			id = fmt.Sprintf("jumper-%d", i)
		}
		roster = append(roster, rosterEntry{
			jumper:  NewJumper(id, cfg.LaneWidth, cfg.LaneHeight),
			policy:  entrant.Policy,
			fitness: entrant.Fitness,
		})
	}

	field := NewSpikeField(cfg.LaneWidth, cfg.LaneHeight, options.rng)
	if err := field.Place(cfg.ObstacleCount); err != nil {
		return nil, err
	}

	return &Session{
		cfg:    cfg,
		engine: newTickEngine(cfg, field, roster, options.logger),
		sink:   options.sink,
		logger: options.logger,
	}, nil
}

func (s *Session) Engine() *TickEngine {
	return s.engine
}

// Tick advances one step and reports whether any jumper is still active.
func (s *Session) Tick(ctx context.Context) (bool, error) {
	report, err := s.engine.Step(ctx)
	if err != nil {
		return false, err
	}
	if s.sink != nil {
		s.sink.Draw(s.frame())
	}
	return report.Active > 0, nil
}

// Run ticks until the roster is empty (or MaxTicks is reached) and returns
// the session summary.
func (s *Session) Run(ctx context.Context) (Result, error) {
	s.logger.Debug("session started",
		"entrants", s.engine.Active(),
		"obstacles", s.cfg.ObstacleCount,
		"lane_width", s.cfg.LaneWidth,
		"lane_height", s.cfg.LaneHeight,
	)

	truncated := false
	for s.engine.Active() > 0 {
		if err := ctx.Err(); err != nil {
			return s.result(false), err
		}
		if s.cfg.MaxTicks > 0 && s.engine.Ticks() >= s.cfg.MaxTicks {
			truncated = true
			s.engine.settleSurvivors()
			break
		}
		if _, err := s.Tick(ctx); err != nil {
			return s.result(false), err
		}
	}

	result := s.result(truncated)
	s.logger.Debug("session finished", "high_score", result.HighScore, "ticks", result.Ticks, "truncated", truncated)
	return result, nil
}

func (s *Session) result(truncated bool) Result {
	var survivors []Standing
	for _, j := range s.engine.Jumpers() {
		survivors = append(survivors, Standing{AgentID: j.ID(), Score: j.Score()})
	}
	return Result{
		HighScore:    s.engine.HighScore(),
		Ticks:        s.engine.Ticks(),
		Recycles:     s.engine.Recycles(),
		Truncated:    truncated,
		Eliminations: s.engine.Eliminations(),
		Survivors:    survivors,
	}
}

func (s *Session) frame() Frame {
	jumpers := s.engine.Jumpers()
	views := make([]JumperView, len(jumpers))
	for i, j := range jumpers {
		views[i] = JumperView{ID: j.ID(), Rect: j.Rect(), Jumping: j.Jumping(), Score: j.Score()}
	}
	return Frame{
		Tick:       s.engine.Ticks(),
		LaneWidth:  s.cfg.LaneWidth,
		LaneHeight: s.cfg.LaneHeight,
		HighScore:  s.engine.HighScore(),
		Spikes:     s.engine.Field().Spikes(),
		Jumpers:    views,
	}
}

// RunSpikeJump builds a fresh session for entrants and runs it to completion.
func RunSpikeJump(ctx context.Context, cfg SpikeJumpConfig, entrants []Entrant, opts ...SessionOption) (Result, error) {
	session, err := NewSession(cfg, entrants, opts...)
	if err != nil {
		return Result{}, err
	}
	return session.Run(ctx)
}
