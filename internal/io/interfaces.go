package io

import "context"

type Sensor interface {
	Name() string
	Read(ctx context.Context) ([]float64, error)
}

// ScalarSensorSetter is the optional sensor capability scapes use to push one
// observation value into a cortex before ticking it.
type ScalarSensorSetter interface {
	Set(value float64)
}

type Actuator interface {
	Name() string
	Write(ctx context.Context, values []float64) error
}

// SnapshotActuator lets a scape read back the most recent actuator output.
type SnapshotActuator interface {
	Last() []float64
}
