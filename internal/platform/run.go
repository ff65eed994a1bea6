package platform

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"spikejump/internal/agent"
	"spikejump/internal/genotype"
	"spikejump/internal/model"
	"spikejump/internal/scape"
	"spikejump/internal/scapeid"
	"spikejump/internal/storage"
)

type RunConfig struct {
	// RunID defaults to a fresh UUID.
	RunID string
	// Session is the per-session configuration. Iteration i runs with
	// Session.Seed+i so every session of a run is reproducible on its own.
	Session    scape.SpikeJumpConfig
	Iterations int
	// Construct shapes the random policies; a zero value uses
	// genotype.DefaultConstructConstraint.
	Construct genotype.ConstructConstraint
	Sink       scape.FrameSink
	// Now stamps session records; defaults to time.Now.
	Now func() time.Time
}

type RunResult struct {
	RunID         string                `json:"run_id"`
	Sessions      []model.SessionRecord `json:"sessions"`
	BestSessionID string                `json:"best_session_id"`
	BestHighScore int                   `json:"best_high_score"`
	BestFitness   float64               `json:"best_fitness"`
}

// RunSpikeJump runs Iterations independent sessions, each with a freshly
// constructed batch of RosterSize policies, and persists every session
// record plus the improved scape summary.
func (p *Polis) RunSpikeJump(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if cfg.Iterations <= 0 {
		return RunResult{}, fmt.Errorf("iterations must be > 0, got %d", cfg.Iterations)
	}
	if cfg.Session.RosterSize <= 0 {
		return RunResult{}, fmt.Errorf("%w: roster size must be > 0, got %d", scape.ErrInvalidConfiguration, cfg.Session.RosterSize)
	}
	if err := cfg.Session.Validate(cfg.Session.RosterSize); err != nil {
		return RunResult{}, err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Construct.Scape == "" {
		cfg.Construct = genotype.DefaultConstructConstraint()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	runCtx, err := p.registerRun(ctx, cfg.RunID)
	if err != nil {
		return RunResult{}, err
	}
	defer p.unregisterRun(cfg.RunID)

	p.logger.Info("run started",
		"run_id", cfg.RunID,
		"iterations", cfg.Iterations,
		"roster_size", cfg.Session.RosterSize,
		"obstacles", cfg.Session.ObstacleCount,
		"seed", cfg.Session.Seed,
	)

	result := RunResult{RunID: cfg.RunID, BestHighScore: -1}
	for i := 0; i < cfg.Iterations; i++ {
		record, err := p.runIteration(runCtx, cfg, i)
		if err != nil {
			return result, fmt.Errorf("run %s iteration %d: %w", cfg.RunID, i, err)
		}
		result.Sessions = append(result.Sessions, record)
		if record.HighScore > result.BestHighScore {
			result.BestHighScore = record.HighScore
			result.BestSessionID = record.ID
			result.BestFitness = bestFitness(record)
		}
		p.logger.Info("session finished",
			"run_id", cfg.RunID,
			"iteration", i,
			"high_score", record.HighScore,
			"ticks", record.Ticks,
			"recycles", record.Recycles,
			"truncated", record.Truncated,
		)
	}

	best := result.Sessions[0]
	for _, record := range result.Sessions {
		if record.ID == result.BestSessionID {
			best = record
		}
	}
	if err := p.updateScapeSummary(ctx, best); err != nil {
		return result, err
	}

	p.logger.Info("run finished", "run_id", cfg.RunID, "best_high_score", result.BestHighScore)
	return result, nil
}

func (p *Polis) runIteration(ctx context.Context, cfg RunConfig, iteration int) (model.SessionRecord, error) {
	lane, err := p.sessionScape(cfg.Construct.Scape)
	if err != nil {
		return model.SessionRecord{}, err
	}
	sessionCfg := cfg.Session
	sessionCfg.Seed = cfg.Session.Seed + int64(iteration)

	constructed, err := genotype.ConstructPopulation(
		fmt.Sprintf("%s-i%d", cfg.RunID, iteration),
		sessionCfg.RosterSize,
		cfg.Construct,
		rand.New(rand.NewSource(sessionCfg.Seed)),
	)
	if err != nil {
		return model.SessionRecord{}, err
	}

	cells := make([]*scape.FitnessCell, len(constructed))
	entrants := make([]scape.Entrant, len(constructed))
	for i, c := range constructed {
		cortex, err := agent.NewCortexForScape(c.Genome.ID, c.Genome, cfg.Construct.Scape, c.InputNeuronIDs, c.OutputNeuronIDs)
		if err != nil {
			return model.SessionRecord{}, err
		}
		if err := p.store.SaveGenome(ctx, c.Genome); err != nil {
			return model.SessionRecord{}, fmt.Errorf("save genome %s: %w", c.Genome.ID, err)
		}
		policy, err := scape.SpikeJumpPolicy(cortex)
		if err != nil {
			return model.SessionRecord{}, err
		}
		cells[i] = &scape.FitnessCell{}
		entrants[i] = scape.Entrant{Policy: policy, Fitness: cells[i]}
	}

	var opts []scape.SessionOption
	if cfg.Sink != nil {
		opts = append(opts, scape.WithFrameSink(cfg.Sink))
	}
	outcome, err := lane.RunSession(ctx, sessionCfg, entrants, opts...)
	if err != nil {
		return model.SessionRecord{}, err
	}

	record := model.SessionRecord{
		VersionedRecord: storage.Versioned(),
		ID:              uuid.NewString(),
		RunID:           cfg.RunID,
		Iteration:       iteration,
		Seed:            sessionCfg.Seed,
		LaneWidth:       sessionCfg.LaneWidth,
		LaneHeight:      sessionCfg.LaneHeight,
		ObstacleCount:   sessionCfg.ObstacleCount,
		RosterSize:      sessionCfg.RosterSize,
		HighScore:       outcome.HighScore,
		Ticks:           outcome.Ticks,
		Recycles:        outcome.Recycles,
		Truncated:       outcome.Truncated,
		Agents:          agentResults(constructed, cells, outcome),
		CreatedAt:       cfg.Now().UTC(),
	}
	if err := p.store.SaveSessionRecord(ctx, record); err != nil {
		return model.SessionRecord{}, fmt.Errorf("save session %s: %w", record.ID, err)
	}
	return record, nil
}

// sessionScape resolves the registered scape that runs the sessions.
func (p *Polis) sessionScape(name string) (scape.SessionScape, error) {
	name = scapeid.Normalize(name)
	registered, ok := p.GetScape(name)
	if !ok {
		return nil, fmt.Errorf("scape not registered: %s", name)
	}
	lane, ok := registered.(scape.SessionScape)
	if !ok {
		return nil, fmt.Errorf("scape %s cannot run sessions", name)
	}
	return lane, nil
}

// agentResults reports every entrant in roster order. Survivors of a
// truncated session keep EliminatedAtTick 0.
func agentResults(constructed []genotype.ConstructedAgent, cells []*scape.FitnessCell, outcome scape.Result) []model.AgentResult {
	eliminated := make(map[string]scape.Elimination, len(outcome.Eliminations))
	for _, e := range outcome.Eliminations {
		eliminated[e.AgentID] = e
	}
	alive := make(map[string]int, len(outcome.Survivors))
	for _, s := range outcome.Survivors {
		alive[s.AgentID] = s.Score
	}

	out := make([]model.AgentResult, len(constructed))
	for i, c := range constructed {
		res := model.AgentResult{
			AgentID:  c.Genome.ID,
			GenomeID: c.Genome.ID,
			Fitness:  cells[i].Value(),
		}
		if e, ok := eliminated[c.Genome.ID]; ok {
			res.Score = e.Score
			res.EliminatedAtTick = e.Tick
		} else {
			res.Score = alive[c.Genome.ID]
		}
		out[i] = res
	}
	return out
}

func bestFitness(record model.SessionRecord) float64 {
	if len(record.Agents) == 0 {
		return 0
	}
	best := record.Agents[0].Fitness
	for _, a := range record.Agents[1:] {
		if a.Fitness > best {
			best = a.Fitness
		}
	}
	return best
}

func (p *Polis) updateScapeSummary(ctx context.Context, best model.SessionRecord) error {
	summary, ok, err := p.store.GetScapeSummary(ctx, scapeid.SpikeJump)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.ScapeSummary{
			VersionedRecord: storage.Versioned(),
			Name:            scapeid.SpikeJump,
			Description:     fmt.Sprintf("best observed high score for scape %s", scapeid.SpikeJump),
			BestHighScore:   -1,
		}
	}
	if best.HighScore <= summary.BestHighScore {
		return nil
	}
	summary.BestHighScore = best.HighScore
	summary.BestSessionID = best.ID
	summary.BestFitness = bestFitness(best)
	return p.store.SaveScapeSummary(ctx, summary)
}
