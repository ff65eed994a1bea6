package scape

import "context"

type Fitness float64

type Trace map[string]any

type Agent interface {
	ID() string
}

type TickAgent interface {
	Agent
	Tick(ctx context.Context) ([]float64, error)
}

// StepAgent is the decision policy contract: one observation vector in, one
// action vector out, synchronously.
type StepAgent interface {
	Agent
	RunStep(ctx context.Context, input []float64) ([]float64, error)
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error)
}

// PopulationScape evaluates a whole batch inside one shared simulation.
type PopulationScape interface {
	Scape
	EvaluatePopulation(ctx context.Context, agents []Agent) ([]Fitness, Trace, error)
}

// SessionScape runs a roster the caller has already paired with policies and
// accumulators, so the caller keeps the per-entrant fitness.
type SessionScape interface {
	Scape
	RunSession(ctx context.Context, cfg SpikeJumpConfig, entrants []Entrant, opts ...SessionOption) (Result, error)
}

// Accumulator receives fitness deltas for one roster slot. The simulation
// only ever adds to it.
type Accumulator interface {
	Add(delta float64)
}

// FitnessCell is the plain Accumulator used by callers that want the total back.
type FitnessCell struct {
	value float64
}

func (c *FitnessCell) Add(delta float64) {
	c.value += delta
}

func (c *FitnessCell) Value() float64 {
	return c.value
}

type funcPolicy struct {
	id string
	fn func(input []float64) []float64
}

// PolicyFunc wraps a plain function as a StepAgent.
func PolicyFunc(id string, fn func(input []float64) []float64) StepAgent {
	return funcPolicy{id: id, fn: fn}
}

func (p funcPolicy) ID() string { return p.id }

func (p funcPolicy) RunStep(_ context.Context, input []float64) ([]float64, error) {
	return p.fn(input), nil
}
