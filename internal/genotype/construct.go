package genotype

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"spikejump/internal/model"
	"spikejump/internal/morphology"
	"spikejump/internal/nn"
	"spikejump/internal/scapeid"
)

const (
	GenomeSchemaVersion = 1
	GenomeCodecVersion  = 1
)

// ConstructConstraint bounds the shape of randomly constructed genomes.
type ConstructConstraint struct {
	Scape         string
	Morphology    string
	HiddenNeurons int
	NeuralAFs     []string
	OutputAF      string
	WeightRange   float64
	DistanceScale float64
}

func DefaultConstructConstraint() ConstructConstraint {
	return ConstructConstraint{
		Scape:         scapeid.SpikeJump,
		Morphology:    "default",
		HiddenNeurons: 3,
		NeuralAFs:     []string{"tanh", "relu", "gaussian"},
		OutputAF:      "sigmoid",
		WeightRange:   2,
		// Distances are in lane units; keep the initial input weights small
		// enough that a few hundred units do not saturate every neuron.
		DistanceScale: 0.01,
	}
}

// ConstructedAgent carries a genome plus the neuron ids a cortex binds its
// observation and action vectors to.
type ConstructedAgent struct {
	Genome          model.Genome
	InputNeuronIDs  []string
	OutputNeuronIDs []string
}

// ConstructAgent builds one fully connected feed-forward genome for the
// constraint's morphology: one input neuron per sensor, an optional hidden
// layer and a single output neuron feeding the jump actuator.
func ConstructAgent(agentID string, constraint ConstructConstraint, rng *rand.Rand) (ConstructedAgent, error) {
	if strings.TrimSpace(agentID) == "" {
		return ConstructedAgent{}, fmt.Errorf("agent id is required")
	}
	if constraint.HiddenNeurons < 0 {
		return ConstructedAgent{}, fmt.Errorf("hidden neuron count must be >= 0, got %d", constraint.HiddenNeurons)
	}
	rng = ensureRNG(rng)

	morph, err := morphology.ConstructMorphology(constraint.Scape, constraint.Morphology)
	if err != nil {
		return ConstructedAgent{}, err
	}
	weightRange := constraint.WeightRange
	if weightRange <= 0 {
		weightRange = 1
	}
	outputAF := constraint.OutputAF
	if outputAF == "" {
		outputAF = "sigmoid"
	}
	if _, err := nn.GetActivation(outputAF); err != nil {
		return ConstructedAgent{}, err
	}

	genome := model.Genome{
		VersionedRecord: model.VersionedRecord{SchemaVersion: GenomeSchemaVersion, CodecVersion: GenomeCodecVersion},
		ID:              agentID,
		SensorIDs:       morph.Sensors(),
		ActuatorIDs:     morph.Actuators(),
	}

	inputIDs := make([]string, 0, len(genome.SensorIDs))
	for _, sensorID := range genome.SensorIDs {
		id := fmt.Sprintf("%s:i:%s", agentID, sensorID)
		inputIDs = append(inputIDs, id)
		genome.Neurons = append(genome.Neurons, model.Neuron{ID: id, Activation: "identity"})
	}

	sources := inputIDs
	if constraint.HiddenNeurons > 0 {
		hiddenIDs := make([]string, 0, constraint.HiddenNeurons)
		for h := 0; h < constraint.HiddenNeurons; h++ {
			af, err := RandomElement(rng, constraint.NeuralAFs)
			if err != nil {
				af = "tanh"
			}
			id := fmt.Sprintf("%s:h:%d", agentID, h)
			hiddenIDs = append(hiddenIDs, id)
			genome.Neurons = append(genome.Neurons, model.Neuron{
				ID:         id,
				Activation: af,
				Bias:       centered(rng, weightRange),
			})
		}
		genome.Synapses = append(genome.Synapses, connect(agentID, inputIDs, hiddenIDs, genome.SensorIDs, constraint.DistanceScale, weightRange, rng)...)
		sources = hiddenIDs
	}

	outputID := fmt.Sprintf("%s:o:%s", agentID, genome.ActuatorIDs[0])
	genome.Neurons = append(genome.Neurons, model.Neuron{
		ID:         outputID,
		Activation: outputAF,
		Bias:       centered(rng, weightRange),
	})
	var sourceSensors []string
	if constraint.HiddenNeurons == 0 {
		sourceSensors = genome.SensorIDs
	}
	genome.Synapses = append(genome.Synapses, connect(agentID, sources, []string{outputID}, sourceSensors, constraint.DistanceScale, weightRange, rng)...)

	if err := nn.Validate(genome); err != nil {
		return ConstructedAgent{}, err
	}
	return ConstructedAgent{
		Genome:          genome,
		InputNeuronIDs:  inputIDs,
		OutputNeuronIDs: []string{outputID},
	}, nil
}

// ConstructPopulation builds size agents named "<prefix>-<n>" from one RNG so
// a seed reproduces the whole batch.
func ConstructPopulation(prefix string, size int, constraint ConstructConstraint, rng *rand.Rand) ([]ConstructedAgent, error) {
	if size < 0 {
		return nil, fmt.Errorf("population size must be >= 0, got %d", size)
	}
	rng = ensureRNG(rng)
	agents := make([]ConstructedAgent, 0, size)
	for i := 0; i < size; i++ {
		agent, err := ConstructAgent(fmt.Sprintf("%s-%d", prefix, i), constraint, rng)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

// connect fully connects from -> to. When fromSensors is set, weights leaving
// the distance input are scaled down by distanceScale.
func connect(agentID string, from, to, fromSensors []string, distanceScale, weightRange float64, rng *rand.Rand) []model.Synapse {
	synapses := make([]model.Synapse, 0, len(from)*len(to))
	for i, src := range from {
		scale := 1.0
		if distanceScale > 0 && i < len(fromSensors) && fromSensors[i] == distanceSensorName {
			scale = distanceScale
		}
		for _, dst := range to {
			synapses = append(synapses, model.Synapse{
				ID:      fmt.Sprintf("%s:s:%s->%s", agentID, src, dst),
				From:    src,
				To:      dst,
				Weight:  centered(rng, weightRange) * scale,
				Enabled: true,
			})
		}
	}
	return synapses
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// centered draws uniformly from [-span/2, span/2).
func centered(rng *rand.Rand, span float64) float64 {
	return (rng.Float64() - 0.5) * span
}
