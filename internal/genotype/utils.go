package genotype

import (
	"fmt"
	"math/rand"

	protoio "spikejump/internal/io"
)

const distanceSensorName = protoio.SpikeJumpDistanceSensorName

// RandomElement picks one value with optional RNG injection.
func RandomElement[T any](rng *rand.Rand, values []T) (T, error) {
	var zero T
	if len(values) == 0 {
		return zero, fmt.Errorf("values are required")
	}
	rng = ensureRNG(rng)
	return values[rng.Intn(len(values))], nil
}
