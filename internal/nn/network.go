package nn

import (
	"errors"
	"fmt"

	"spikejump/internal/model"
)

var ErrInvalidGenome = errors.New("invalid genome")

// Forward evaluates the genome once. Neurons are visited in declaration
// order, so a feed-forward genome must list every neuron after its sources.
// Input neurons keep the values given in inputByNeuron.
func Forward(genome model.Genome, inputByNeuron map[string]float64) (map[string]float64, error) {
	values := make(map[string]float64, len(genome.Neurons))
	for neuronID, value := range inputByNeuron {
		values[neuronID] = value
	}

	incoming := make(map[string][]model.Synapse, len(genome.Neurons))
	for _, synapse := range genome.Synapses {
		if !synapse.Enabled {
			continue
		}
		incoming[synapse.To] = append(incoming[synapse.To], synapse)
	}

	for _, neuron := range genome.Neurons {
		if _, fixedInput := inputByNeuron[neuron.ID]; fixedInput {
			continue
		}

		total := neuron.Bias
		for _, synapse := range incoming[neuron.ID] {
			total += values[synapse.From] * synapse.Weight
		}

		fn, err := GetActivation(neuron.Activation)
		if err != nil {
			return nil, fmt.Errorf("neuron %s: %w", neuron.ID, err)
		}
		values[neuron.ID] = fn(total)
	}

	return values, nil
}

// Validate checks that neuron ids are unique and every synapse connects known
// neurons.
func Validate(genome model.Genome) error {
	known := make(map[string]struct{}, len(genome.Neurons))
	for _, neuron := range genome.Neurons {
		if neuron.ID == "" {
			return fmt.Errorf("%w: neuron id is required", ErrInvalidGenome)
		}
		if _, dup := known[neuron.ID]; dup {
			return fmt.Errorf("%w: duplicate neuron %s", ErrInvalidGenome, neuron.ID)
		}
		known[neuron.ID] = struct{}{}
	}
	for _, synapse := range genome.Synapses {
		if _, ok := known[synapse.From]; !ok {
			return fmt.Errorf("%w: synapse %s from unknown neuron %s", ErrInvalidGenome, synapse.ID, synapse.From)
		}
		if _, ok := known[synapse.To]; !ok {
			return fmt.Errorf("%w: synapse %s to unknown neuron %s", ErrInvalidGenome, synapse.ID, synapse.To)
		}
	}
	return nil
}
