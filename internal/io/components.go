package io

import (
	"context"
	"fmt"
	"sync"

	"spikejump/internal/scapeid"
)

const (
	SpikeJumpDistanceSensorName = "spike_jump_distance"
	SpikeJumpVelocitySensorName = "spike_jump_velocity"
	SpikeJumpJumpingSensorName  = "spike_jump_jumping"
	SpikeJumpActuatorName       = "spike_jump_jump"
)

type ScalarInputSensor struct {
	name string

	mu    sync.RWMutex
	value float64
}

func NewScalarInputSensor(name string, initial float64) *ScalarInputSensor {
	return &ScalarInputSensor{name: name, value: initial}
}

func (s *ScalarInputSensor) Name() string {
	return s.name
}

func (s *ScalarInputSensor) Read(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []float64{s.value}, nil
}

func (s *ScalarInputSensor) Set(value float64) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

type ScalarOutputActuator struct {
	name string

	mu   sync.RWMutex
	last []float64
}

func NewScalarOutputActuator(name string) *ScalarOutputActuator {
	return &ScalarOutputActuator{name: name}
}

func (a *ScalarOutputActuator) Name() string {
	return a.name
}

func (a *ScalarOutputActuator) Write(_ context.Context, values []float64) error {
	a.mu.Lock()
	a.last = append([]float64(nil), values...)
	a.mu.Unlock()
	return nil
}

func (a *ScalarOutputActuator) Last() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.last...)
}

func init() {
	initializeDefaultComponents()
}

func spikeJumpOnly(scape string) error {
	if scape != scapeid.SpikeJump {
		return fmt.Errorf("unsupported scape: %s", scape)
	}
	return nil
}

func initializeDefaultComponents() {
	for _, name := range []string{
		SpikeJumpDistanceSensorName,
		SpikeJumpVelocitySensorName,
		SpikeJumpJumpingSensorName,
	} {
		name := name
		mustRegister(RegisterSensorWithSpec(SensorSpec{
			Name:          name,
			Factory:       func() Sensor { return NewScalarInputSensor(name, 0) },
			SchemaVersion: SupportedSchemaVersion,
			CodecVersion:  SupportedCodecVersion,
			Compatible:    spikeJumpOnly,
		}))
	}

	mustRegister(RegisterActuatorWithSpec(ActuatorSpec{
		Name:          SpikeJumpActuatorName,
		Factory:       func() Actuator { return NewScalarOutputActuator(SpikeJumpActuatorName) },
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
		Compatible:    spikeJumpOnly,
	}))
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}
