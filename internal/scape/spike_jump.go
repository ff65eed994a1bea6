package scape

import (
	"context"
	"fmt"
	"log/slog"

	protoio "spikejump/internal/io"
	"spikejump/internal/scapeid"
)

// DefaultEvaluationTicks caps evaluation sessions whose config leaves
// MaxTicks unset, so a policy that never collides still terminates.
const DefaultEvaluationTicks = 2000

// SpikeJumpScape evaluates agents as jumpers on a shared spike lane.
type SpikeJumpScape struct {
	Config SpikeJumpConfig
	Logger *slog.Logger
}

func (SpikeJumpScape) Name() string {
	return scapeid.SpikeJump
}

func (s SpikeJumpScape) Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error) {
	fitness, trace, err := s.EvaluatePopulation(ctx, []Agent{agent})
	if err != nil {
		return 0, nil, err
	}
	return fitness[0], trace, nil
}

// EvaluatePopulation runs every agent in one session. Fitness is returned in
// agent order.
func (s SpikeJumpScape) EvaluatePopulation(ctx context.Context, agents []Agent) ([]Fitness, Trace, error) {
	if len(agents) == 0 {
		return nil, nil, fmt.Errorf("%w: no agents to evaluate", ErrInvalidConfiguration)
	}
	cfg := s.evaluationConfig(len(agents))

	cells := make([]*FitnessCell, len(agents))
	entrants := make([]Entrant, len(agents))
	for i, agent := range agents {
		policy, err := SpikeJumpPolicy(agent)
		if err != nil {
			return nil, nil, err
		}
		cells[i] = &FitnessCell{}
		entrants[i] = Entrant{Policy: policy, Fitness: cells[i]}
	}

	result, err := s.RunSession(ctx, cfg, entrants)
	if err != nil {
		return nil, nil, err
	}

	fitness := make([]Fitness, len(cells))
	for i, cell := range cells {
		fitness[i] = Fitness(cell.Value())
	}
	trace := result.Trace()
	trace["agents"] = len(agents)
	return fitness, trace, nil
}

// RunSession runs one session for entrants with the scape's logger; options
// passed by the caller take precedence.
func (s SpikeJumpScape) RunSession(ctx context.Context, cfg SpikeJumpConfig, entrants []Entrant, opts ...SessionOption) (Result, error) {
	if s.Logger != nil {
		opts = append([]SessionOption{WithLogger(s.Logger)}, opts...)
	}
	return RunSpikeJump(ctx, cfg, entrants, opts...)
}

func (s SpikeJumpScape) evaluationConfig(agents int) SpikeJumpConfig {
	cfg := s.Config
	defaults := DefaultSpikeJumpConfig()
	if cfg.LaneWidth == 0 {
		cfg.LaneWidth = defaults.LaneWidth
	}
	if cfg.LaneHeight == 0 {
		cfg.LaneHeight = defaults.LaneHeight
	}
	if cfg.ObstacleCount == 0 {
		cfg.ObstacleCount = defaults.ObstacleCount
	}
	if cfg.MaxTicks == 0 {
		cfg.MaxTicks = DefaultEvaluationTicks
	}
	cfg.RosterSize = agents
	return cfg
}

// SpikeJumpPolicy drives an agent that exposes registered IO through its
// sensors and jump actuator; a failed binding is returned, not skipped.
// Agents without registered IO fall back to plain RunStep.
func SpikeJumpPolicy(agent Agent) (StepAgent, error) {
	if ticker, ok := agent.(TickAgent); ok {
		if _, ok := agent.(ioRegistryAccess); ok {
			policy, err := bindSpikeJumpIO(ticker)
			if err != nil {
				return nil, fmt.Errorf("bind spike-jump io: %w", err)
			}
			return policy, nil
		}
	}
	runner, ok := agent.(StepAgent)
	if !ok {
		return nil, fmt.Errorf("agent %s does not implement step runner", agent.ID())
	}
	return runner, nil
}

type spikeJumpTickPolicy struct {
	ticker  TickAgent
	inputs  [3]protoio.ScalarSensorSetter
	actuate protoio.SnapshotActuator
}

type ioRegistryAccess interface {
	RegisteredSensor(id string) (protoio.Sensor, bool)
	RegisteredActuator(id string) (protoio.Actuator, bool)
}

func bindSpikeJumpIO(agent TickAgent) (*spikeJumpTickPolicy, error) {
	typed, ok := agent.(ioRegistryAccess)
	if !ok {
		return nil, fmt.Errorf("agent %s does not expose IO registry access", agent.ID())
	}

	policy := &spikeJumpTickPolicy{ticker: agent}
	bound := 0
	for i, name := range []string{
		protoio.SpikeJumpDistanceSensorName,
		protoio.SpikeJumpVelocitySensorName,
		protoio.SpikeJumpJumpingSensorName,
	} {
		sensor, ok := typed.RegisteredSensor(name)
		if !ok {
			continue
		}
		setter, ok := sensor.(protoio.ScalarSensorSetter)
		if !ok {
			return nil, fmt.Errorf("sensor %s does not support scalar set", name)
		}
		policy.inputs[i] = setter
		bound++
	}
	if bound == 0 {
		return nil, fmt.Errorf("agent %s has no spike-jump sensors", agent.ID())
	}

	actuator, ok := typed.RegisteredActuator(protoio.SpikeJumpActuatorName)
	if !ok {
		return nil, fmt.Errorf("agent %s missing actuator %s", agent.ID(), protoio.SpikeJumpActuatorName)
	}
	snapshot, ok := actuator.(protoio.SnapshotActuator)
	if !ok {
		return nil, fmt.Errorf("actuator %s does not support output snapshot", protoio.SpikeJumpActuatorName)
	}
	policy.actuate = snapshot
	return policy, nil
}

func (p *spikeJumpTickPolicy) ID() string {
	return p.ticker.ID()
}

func (p *spikeJumpTickPolicy) RunStep(ctx context.Context, input []float64) ([]float64, error) {
	for i, setter := range p.inputs {
		if setter != nil && i < len(input) {
			setter.Set(input[i])
		}
	}
	out, err := p.ticker.Tick(ctx)
	if err != nil {
		return nil, err
	}
	if last := p.actuate.Last(); len(last) > 0 {
		return last, nil
	}
	return out, nil
}
