package io

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"spikejump/internal/scapeid"
)

const (
	SupportedSchemaVersion = 1
	SupportedCodecVersion  = 1
)

var (
	ErrSensorExists     = errors.New("sensor already registered")
	ErrSensorNotFound   = errors.New("sensor not found")
	ErrActuatorExists   = errors.New("actuator already registered")
	ErrActuatorNotFound = errors.New("actuator not found")
	ErrVersionMismatch  = errors.New("registry version mismatch")
	ErrIncompatible     = errors.New("component incompatible with scape")
)

type CompatibilityFn func(scape string) error

type SensorFactory func() Sensor

type ActuatorFactory func() Actuator

type SensorSpec struct {
	Name          string
	Factory       SensorFactory
	SchemaVersion int
	CodecVersion  int
	Compatible    CompatibilityFn
}

type ActuatorSpec struct {
	Name          string
	Factory       ActuatorFactory
	SchemaVersion int
	CodecVersion  int
	Compatible    CompatibilityFn
}

type registered[T any] struct {
	factory       func() T
	schemaVersion int
	codecVersion  int
	compatible    CompatibilityFn
}

// componentRegistry holds one kind of IO component keyed by name.
type componentRegistry[T any] struct {
	kind      string
	errExists error
	errAbsent error
	canonical func(string) string

	mu sync.RWMutex
	m  map[string]registered[T]
}

func newComponentRegistry[T any](kind string, errExists, errAbsent error, canonical func(string) string) *componentRegistry[T] {
	return &componentRegistry[T]{
		kind:      kind,
		errExists: errExists,
		errAbsent: errAbsent,
		canonical: canonical,
		m:         make(map[string]registered[T]),
	}
}

var (
	sensorRegistry   = newComponentRegistry[Sensor]("sensor", ErrSensorExists, ErrSensorNotFound, nil)
	actuatorRegistry = newComponentRegistry[Actuator]("actuator", ErrActuatorExists, ErrActuatorNotFound, CanonicalActuatorName)
)

func (r *componentRegistry[T]) register(name string, factory func() T, schemaVersion, codecVersion int, compatible CompatibilityFn) error {
	if name == "" {
		return fmt.Errorf("%s name is required", r.kind)
	}
	if factory == nil {
		return fmt.Errorf("%s factory is required", r.kind)
	}
	if schemaVersion != SupportedSchemaVersion || codecVersion != SupportedCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, schemaVersion, codecVersion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[name]; exists {
		return fmt.Errorf("%w: %s", r.errExists, name)
	}
	r.m[name] = registered[T]{
		factory:       factory,
		schemaVersion: schemaVersion,
		codecVersion:  codecVersion,
		compatible:    compatible,
	}
	return nil
}

func (r *componentRegistry[T]) find(name string) (registered[T], string, bool) {
	lookup := strings.TrimSpace(name)
	if lookup == "" {
		return registered[T]{}, "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.m[lookup]; ok {
		return entry, lookup, true
	}
	if r.canonical != nil {
		if canonical := r.canonical(lookup); canonical != "" && canonical != lookup {
			if entry, ok := r.m[canonical]; ok {
				return entry, canonical, true
			}
		}
	}
	return registered[T]{}, "", false
}

func (r *componentRegistry[T]) resolve(name, scape string) (T, error) {
	var zero T
	entry, resolved, ok := r.find(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", r.errAbsent, name)
	}
	if err := r.compatibilityError(resolved, entry, scapeid.Normalize(scape)); err != nil {
		return zero, err
	}
	return entry.factory(), nil
}

func (r *componentRegistry[T]) compatibleWith(name, scape string) bool {
	entry, resolved, ok := r.find(name)
	if !ok {
		return false
	}
	return r.compatibilityError(resolved, entry, scapeid.Normalize(scape)) == nil
}

// list returns sorted names; an empty scape lists everything.
func (r *componentRegistry[T]) list(scape string) []string {
	normalized := scapeid.Normalize(scape)

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.m))
	for name, entry := range r.m {
		if normalized != "" && r.compatibilityError(name, entry, normalized) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *componentRegistry[T]) compatibilityError(name string, entry registered[T], scape string) error {
	if entry.schemaVersion != SupportedSchemaVersion || entry.codecVersion != SupportedCodecVersion {
		return fmt.Errorf("%w: %s", ErrVersionMismatch, name)
	}
	if entry.compatible != nil {
		if err := entry.compatible(scape); err != nil {
			return fmt.Errorf("%w: %s=%s: %v", ErrIncompatible, r.kind, name, err)
		}
	}
	return nil
}

func (r *componentRegistry[T]) reset() {
	r.mu.Lock()
	r.m = make(map[string]registered[T])
	r.mu.Unlock()
}

func RegisterSensor(name string, factory SensorFactory) error {
	return RegisterSensorWithSpec(SensorSpec{
		Name:          name,
		Factory:       factory,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
	})
}

func RegisterSensorWithSpec(spec SensorSpec) error {
	return sensorRegistry.register(spec.Name, spec.Factory, spec.SchemaVersion, spec.CodecVersion, spec.Compatible)
}

func ResolveSensor(name, scape string) (Sensor, error) {
	return sensorRegistry.resolve(name, scape)
}

func SensorCompatibleWithScape(name, scape string) bool {
	return sensorRegistry.compatibleWith(name, scape)
}

func ListSensorsForScape(scape string) []string {
	return sensorRegistry.list(scape)
}

func ListSensors() []string {
	return sensorRegistry.list("")
}

func RegisterActuator(name string, factory ActuatorFactory) error {
	return RegisterActuatorWithSpec(ActuatorSpec{
		Name:          name,
		Factory:       factory,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
	})
}

func RegisterActuatorWithSpec(spec ActuatorSpec) error {
	return actuatorRegistry.register(spec.Name, spec.Factory, spec.SchemaVersion, spec.CodecVersion, spec.Compatible)
}

func ResolveActuator(name, scape string) (Actuator, error) {
	return actuatorRegistry.resolve(name, scape)
}

func ActuatorCompatibleWithScape(name, scape string) bool {
	return actuatorRegistry.compatibleWith(name, scape)
}

func ListActuatorsForScape(scape string) []string {
	return actuatorRegistry.list(scape)
}

func ListActuators() []string {
	return actuatorRegistry.list("")
}

func resetRegistriesForTests() {
	sensorRegistry.reset()
	actuatorRegistry.reset()
	initializeDefaultComponents()
}
