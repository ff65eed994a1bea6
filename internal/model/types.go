package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type Genome struct {
	VersionedRecord
	ID          string    `json:"id"`
	Neurons     []Neuron  `json:"neurons"`
	Synapses    []Synapse `json:"synapses"`
	SensorIDs   []string  `json:"sensor_ids"`
	ActuatorIDs []string  `json:"actuator_ids"`
}

type Neuron struct {
	ID         string  `json:"id"`
	Activation string  `json:"activation"`
	Bias       float64 `json:"bias"`
}

type Synapse struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// AgentResult is one roster member's outcome inside a session.
type AgentResult struct {
	AgentID          string  `json:"agent_id"`
	GenomeID         string  `json:"genome_id"`
	Fitness          float64 `json:"fitness"`
	Score            int     `json:"score"`
	EliminatedAtTick int     `json:"eliminated_at_tick"`
}

// SessionRecord is the persisted summary of one spike-jump session.
type SessionRecord struct {
	VersionedRecord
	ID            string        `json:"id"`
	RunID         string        `json:"run_id"`
	Iteration     int           `json:"iteration"`
	Seed          int64         `json:"seed"`
	LaneWidth     float64       `json:"lane_width"`
	LaneHeight    float64       `json:"lane_height"`
	ObstacleCount int           `json:"obstacle_count"`
	RosterSize    int           `json:"roster_size"`
	HighScore     int           `json:"high_score"`
	Ticks         int           `json:"ticks"`
	Recycles      int           `json:"recycles"`
	Truncated     bool          `json:"truncated"`
	Agents        []AgentResult `json:"agents"`
	CreatedAt     time.Time     `json:"created_at"`
}

type ScapeSummary struct {
	VersionedRecord
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	BestFitness   float64 `json:"best_fitness"`
	BestHighScore int     `json:"best_high_score"`
	BestSessionID string  `json:"best_session_id"`
}
