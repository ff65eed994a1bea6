package morphology

import (
	"fmt"
	"sort"
	"strings"

	protoio "spikejump/internal/io"
	"spikejump/internal/model"
	"spikejump/internal/scapeid"
)

// Morphology defines allowed sensor/actuator combinations for a scape.
type Morphology interface {
	Name() string
	Sensors() []string
	Actuators() []string
	Compatible(scape string) bool
}

type SpikeJumpMorphology struct{}

func (SpikeJumpMorphology) Name() string {
	return "spike-jump-v1"
}

func (SpikeJumpMorphology) Sensors() []string {
	return []string{
		protoio.SpikeJumpDistanceSensorName,
		protoio.SpikeJumpVelocitySensorName,
		protoio.SpikeJumpJumpingSensorName,
	}
}

func (SpikeJumpMorphology) Actuators() []string {
	return []string{protoio.SpikeJumpActuatorName}
}

func (SpikeJumpMorphology) Compatible(scape string) bool {
	return scape == scapeid.SpikeJump
}

// SpikeJumpRangeMorphology only sees the nearest spike distance.
type SpikeJumpRangeMorphology struct{}

func (SpikeJumpRangeMorphology) Name() string {
	return "spike-jump-range-v1"
}

func (SpikeJumpRangeMorphology) Sensors() []string {
	return []string{protoio.SpikeJumpDistanceSensorName}
}

func (SpikeJumpRangeMorphology) Actuators() []string {
	return []string{protoio.SpikeJumpActuatorName}
}

func (SpikeJumpRangeMorphology) Compatible(scape string) bool {
	return scape == scapeid.SpikeJump
}

func defaultMorphologyForScape(scapeName string) (Morphology, bool) {
	switch scapeName {
	case scapeid.SpikeJump:
		return SpikeJumpMorphology{}, true
	default:
		return nil, false
	}
}

func ConstructMorphology(scapeName, profile string) (Morphology, error) {
	scapeName = scapeid.Normalize(scapeName)
	profile = normalizeMorphologyProfile(profile)
	switch scapeName {
	case scapeid.SpikeJump:
		switch profile {
		case "", "default", "full":
			return SpikeJumpMorphology{}, nil
		case "range", "distance", "range_sense":
			return SpikeJumpRangeMorphology{}, nil
		default:
			return nil, fmt.Errorf("unsupported spike-jump morphology profile: %s", profile)
		}
	default:
		return nil, fmt.Errorf("unsupported scape morphology: %s", scapeName)
	}
}

func AvailableMorphologyProfiles(scapeName string) []string {
	var profiles []string
	if scapeid.Normalize(scapeName) == scapeid.SpikeJump {
		profiles = []string{"default", "range"}
	}
	sort.Strings(profiles)
	return profiles
}

func normalizeMorphologyProfile(raw string) string {
	profile := strings.TrimSpace(strings.ToLower(raw))
	profile = strings.ReplaceAll(profile, "-", "_")
	return profile
}

// EnsureScapeCompatibility checks that the default morphology of a known
// scape resolves against the IO registry. Unknown scapes pass.
func EnsureScapeCompatibility(scapeName string) error {
	scapeName = scapeid.Normalize(scapeName)
	m, ok := defaultMorphologyForScape(scapeName)
	if !ok {
		return nil
	}
	return ValidateRegisteredComponents(scapeName, m)
}

func EnsureScapeCompatibilityWithProfile(scapeName, profile string) error {
	m, err := ConstructMorphology(scapeName, profile)
	if err != nil {
		return err
	}
	return ValidateRegisteredComponents(scapeid.Normalize(scapeName), m)
}

func EnsureGenomeIOCompatibility(scapeName string, genome model.Genome) error {
	scapeName = scapeid.Normalize(scapeName)
	for _, sensorName := range genome.SensorIDs {
		if _, err := protoio.ResolveSensor(sensorName, scapeName); err != nil {
			return fmt.Errorf("genome %s sensor %s incompatible with scape %s: %w", genome.ID, sensorName, scapeName, err)
		}
	}
	for _, actuatorName := range genome.ActuatorIDs {
		if _, err := protoio.ResolveActuator(actuatorName, scapeName); err != nil {
			return fmt.Errorf("genome %s actuator %s incompatible with scape %s: %w", genome.ID, actuatorName, scapeName, err)
		}
	}
	return nil
}

func EnsurePopulationIOCompatibility(scapeName string, genomes []model.Genome) error {
	for _, genome := range genomes {
		if err := EnsureGenomeIOCompatibility(scapeName, genome); err != nil {
			return err
		}
	}
	return nil
}

func ValidateRegisteredComponents(scapeName string, m Morphology) error {
	if !m.Compatible(scapeName) {
		return fmt.Errorf("morphology %s incompatible with scape %s", m.Name(), scapeName)
	}
	for _, sensorName := range m.Sensors() {
		if _, err := protoio.ResolveSensor(sensorName, scapeName); err != nil {
			return fmt.Errorf("resolve sensor %s: %w", sensorName, err)
		}
	}
	for _, actuatorName := range m.Actuators() {
		if _, err := protoio.ResolveActuator(actuatorName, scapeName); err != nil {
			return fmt.Errorf("resolve actuator %s: %w", actuatorName, err)
		}
	}
	return nil
}
