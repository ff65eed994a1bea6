package scape

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"spikejump/internal/logging"
)

const (
	SurvivalReward   = 0.05
	CollisionPenalty = -2.0
	LapBonus         = 5.0
)

// Entrant pairs a policy handle with the fitness accumulator it reports into.
type Entrant struct {
	Policy  StepAgent
	Fitness Accumulator
}

// rosterEntry keeps a jumper with its policy and accumulator so that removal
// always drops all three together.
type rosterEntry struct {
	jumper  *Jumper
	policy  StepAgent
	fitness Accumulator
}

type Elimination struct {
	AgentID string `json:"agent_id"`
	Tick    int    `json:"tick"`
	Score   int    `json:"score"`
}

// TickReport summarizes what one tick did to the roster and spike batch.
type TickReport struct {
	Tick       int
	Eliminated []Elimination
	Wrapped    []string
	Recycled   bool
	Active     int
}

// TickEngine advances the roster and spike field one discrete step at a time.
type TickEngine struct {
	laneWidth     float64
	obstacleCount int
	field         *SpikeField
	roster        []rosterEntry
	highScore     int
	tick          int
	recycles      int
	eliminations  []Elimination
	logger        *slog.Logger
}

func newTickEngine(cfg SpikeJumpConfig, field *SpikeField, roster []rosterEntry, logger *slog.Logger) *TickEngine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &TickEngine{
		laneWidth:     cfg.LaneWidth,
		obstacleCount: cfg.ObstacleCount,
		field:         field,
		roster:        roster,
		logger:        logger,
	}
}

func (e *TickEngine) Active() int { return len(e.roster) }
func (e *TickEngine) HighScore() int { return e.highScore }
func (e *TickEngine) Ticks() int { return e.tick }
func (e *TickEngine) Recycles() int { return e.recycles }
func (e *TickEngine) Field() *SpikeField { return e.field }

func (e *TickEngine) Eliminations() []Elimination {
	return append([]Elimination(nil), e.eliminations...)
}

// Jumpers returns the active jumpers in roster order.
func (e *TickEngine) Jumpers() []*Jumper {
	out := make([]*Jumper, len(e.roster))
	for i, entry := range e.roster {
		out[i] = entry.jumper
	}
	return out
}

// Step runs one tick. It returns the tick report; callers loop while
// report.Active > 0. An empty roster is a no-op.
func (e *TickEngine) Step(ctx context.Context) (TickReport, error) {
	if len(e.roster) == 0 {
		return TickReport{Tick: e.tick}, nil
	}
	e.tick++
	report := TickReport{Tick: e.tick}

	for _, entry := range e.roster {
		entry.fitness.Add(SurvivalReward)
	}
	for _, entry := range e.roster {
		entry.jumper.setNearest(e.field.NearestDistance(entry.jumper.Rect()))
	}

	report.Eliminated = e.removeCollided()

	recycle := false
	for _, entry := range e.roster {
		action, err := e.decide(ctx, entry)
		if err != nil {
			return report, err
		}
		wrapped := entry.jumper.Step(action, e.laneWidth)
		entry.jumper.addScore(1)
		if wrapped {
			entry.fitness.Add(LapBonus)
			report.Wrapped = append(report.Wrapped, entry.jumper.ID())
			recycle = true
		}
	}

	// One replacement per tick no matter how many jumpers wrapped.
	if recycle {
		if err := e.field.Place(e.obstacleCount); err != nil {
			return report, err
		}
		e.recycles++
		report.Recycled = true
		e.logger.Debug("spike batch recycled", "tick", e.tick, "wrapped", len(report.Wrapped))
	}

	report.Active = len(e.roster)
	e.logger.Log(ctx, logging.LevelTrace, "tick", "tick", e.tick, "active", report.Active)
	return report, nil
}

// removeCollided tests every jumper against the current batch first and only
// then filters the roster, so no removal can influence another jumper's test.
func (e *TickEngine) removeCollided() []Elimination {
	collided := make([]bool, len(e.roster))
	hits := 0
	for i, entry := range e.roster {
		if !e.field.Collides(entry.jumper.Rect()) {
			continue
		}
		collided[i] = true
		hits++
		entry.fitness.Add(CollisionPenalty)
	}
	if hits == 0 {
		return nil
	}

	eliminated := make([]Elimination, 0, hits)
	kept := make([]rosterEntry, 0, len(e.roster)-hits)
	best := 0
	for i, entry := range e.roster {
		if !collided[i] {
			kept = append(kept, entry)
			continue
		}
		score := entry.jumper.Score()
		if score > best {
			best = score
		}
		eliminated = append(eliminated, Elimination{AgentID: entry.jumper.ID(), Tick: e.tick, Score: score})
		e.logger.Debug("jumper eliminated", "agent", entry.jumper.ID(), "tick", e.tick, "score", score)
	}
	e.roster = kept
	e.eliminations = append(e.eliminations, eliminated...)

	if len(kept) == 0 && best > e.highScore {
		e.highScore = best
	}
	return eliminated
}

func (e *TickEngine) decide(ctx context.Context, entry rosterEntry) (float64, error) {
	out, err := entry.policy.RunStep(ctx, entry.jumper.Observation())
	if err != nil {
		return 0, fmt.Errorf("policy %s at tick %d: %w", entry.jumper.ID(), e.tick, err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("%w: policy %s returned an empty action at tick %d", ErrInvalidPolicyOutput, entry.jumper.ID(), e.tick)
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, fmt.Errorf("%w: policy %s returned %v at tick %d", ErrInvalidPolicyOutput, entry.jumper.ID(), out[0], e.tick)
	}
	return out[0], nil
}

// settleSurvivors folds the survivors' scores into the high score when a run
// is cut short with jumpers still active.
func (e *TickEngine) settleSurvivors() {
	for _, entry := range e.roster {
		if score := entry.jumper.Score(); score > e.highScore {
			e.highScore = score
		}
	}
}
