package agent

import (
	"context"
	"fmt"

	protoio "spikejump/internal/io"
	"spikejump/internal/model"
	"spikejump/internal/nn"
)

// Cortex runs a genome as a decision policy. It can be driven directly with
// an observation vector (RunStep) or through its registered sensors and
// actuators (Tick).
type Cortex struct {
	id              string
	genome          model.Genome
	sensors         map[string]protoio.Sensor
	actuators       map[string]protoio.Actuator
	inputNeuronIDs  []string
	outputNeuronIDs []string
}

func NewCortex(
	id string,
	genome model.Genome,
	sensors map[string]protoio.Sensor,
	actuators map[string]protoio.Actuator,
	inputNeuronIDs []string,
	outputNeuronIDs []string,
) (*Cortex, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if len(inputNeuronIDs) == 0 {
		return nil, fmt.Errorf("input neuron ids are required")
	}
	if len(outputNeuronIDs) == 0 {
		return nil, fmt.Errorf("output neuron ids are required")
	}
	if err := nn.Validate(genome); err != nil {
		return nil, fmt.Errorf("agent %s: %w", id, err)
	}

	return &Cortex{
		id:              id,
		genome:          genome,
		sensors:         sensors,
		actuators:       actuators,
		inputNeuronIDs:  append([]string(nil), inputNeuronIDs...),
		outputNeuronIDs: append([]string(nil), outputNeuronIDs...),
	}, nil
}

// NewCortexForScape resolves the genome's sensors and actuators from the IO
// registry for the named scape and builds a cortex around them.
func NewCortexForScape(
	id string,
	genome model.Genome,
	scape string,
	inputNeuronIDs []string,
	outputNeuronIDs []string,
) (*Cortex, error) {
	sensors := make(map[string]protoio.Sensor, len(genome.SensorIDs))
	for _, sensorID := range genome.SensorIDs {
		sensor, err := protoio.ResolveSensor(sensorID, scape)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", id, err)
		}
		sensors[sensorID] = sensor
	}
	actuators := make(map[string]protoio.Actuator, len(genome.ActuatorIDs))
	for _, actuatorID := range genome.ActuatorIDs {
		actuator, err := protoio.ResolveActuator(actuatorID, scape)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", id, err)
		}
		actuators[actuatorID] = actuator
	}
	return NewCortex(id, genome, sensors, actuators, inputNeuronIDs, outputNeuronIDs)
}

func (c *Cortex) ID() string {
	return c.id
}

func (c *Cortex) GenomeID() string {
	return c.genome.ID
}

func (c *Cortex) RegisteredSensor(id string) (protoio.Sensor, bool) {
	if c.sensors == nil {
		return nil, false
	}
	s, ok := c.sensors[id]
	return s, ok
}

func (c *Cortex) RegisteredActuator(id string) (protoio.Actuator, bool) {
	if c.actuators == nil {
		return nil, false
	}
	a, ok := c.actuators[protoio.CanonicalActuatorName(id)]
	if !ok {
		a, ok = c.actuators[id]
	}
	return a, ok
}

// Tick reads every genome sensor in order, evaluates the network and writes
// the outputs to the genome actuators.
func (c *Cortex) Tick(ctx context.Context) ([]float64, error) {
	inputs := make([]float64, 0, len(c.genome.SensorIDs))
	for _, sensorID := range c.genome.SensorIDs {
		sensor, ok := c.sensors[sensorID]
		if !ok {
			return nil, fmt.Errorf("sensor not registered: %s", sensorID)
		}
		values, err := sensor.Read(ctx)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, values...)
	}

	outputs, err := c.execute(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if err := c.writeActuators(ctx, outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (c *Cortex) RunStep(ctx context.Context, inputs []float64) ([]float64, error) {
	return c.execute(ctx, inputs)
}

func (c *Cortex) execute(ctx context.Context, inputs []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) != len(c.inputNeuronIDs) {
		return nil, fmt.Errorf("input size mismatch: got=%d want=%d", len(inputs), len(c.inputNeuronIDs))
	}

	inputByNeuron := make(map[string]float64, len(c.inputNeuronIDs))
	for i, neuronID := range c.inputNeuronIDs {
		inputByNeuron[neuronID] = inputs[i]
	}

	values, err := nn.Forward(c.genome, inputByNeuron)
	if err != nil {
		return nil, err
	}

	outputs := make([]float64, len(c.outputNeuronIDs))
	for i, neuronID := range c.outputNeuronIDs {
		outputs[i] = values[neuronID]
	}
	return outputs, nil
}

func (c *Cortex) writeActuators(ctx context.Context, outputs []float64) error {
	if len(c.genome.ActuatorIDs) == 0 {
		return nil
	}
	chunks, err := splitOutputsForActuators(outputs, len(c.genome.ActuatorIDs))
	if err != nil {
		return err
	}
	for i, actuatorID := range c.genome.ActuatorIDs {
		actuator, ok := c.actuators[actuatorID]
		if !ok {
			return fmt.Errorf("actuator not registered: %s", actuatorID)
		}
		if err := actuator.Write(ctx, chunks[i]); err != nil {
			return err
		}
	}
	return nil
}

// splitOutputsForActuators hands a single actuator the whole output vector
// and N actuators equal contiguous slices.
func splitOutputsForActuators(outputs []float64, actuatorCount int) ([][]float64, error) {
	if actuatorCount <= 0 {
		return nil, fmt.Errorf("actuator count must be > 0")
	}
	if actuatorCount == 1 {
		return [][]float64{append([]float64(nil), outputs...)}, nil
	}
	if len(outputs) == 0 || len(outputs)%actuatorCount != 0 {
		return nil, fmt.Errorf("actuator/output shape mismatch: outputs=%d actuators=%d", len(outputs), actuatorCount)
	}
	chunkSize := len(outputs) / actuatorCount
	chunks := make([][]float64, 0, actuatorCount)
	for i := 0; i < actuatorCount; i++ {
		start := i * chunkSize
		chunks = append(chunks, append([]float64(nil), outputs[start:start+chunkSize]...))
	}
	return chunks, nil
}
