package scape

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	// ReferenceLaneWidth is the lane width the spike gap ranges are expressed in.
	ReferenceLaneWidth = 1500.0
	// SpikeFloorOverlap is how far a spike's bottom edge sits below the floor.
	SpikeFloorOverlap = 5.0

	spikeSizeDivisor = 40.0
	firstSpikeGapMin = 200
	firstSpikeGapMax = 500
	spikeGapMin      = 150
	spikeGapMax      = 300
)

// Rect is an axis-aligned rectangle in lane coordinates. Y grows downwards.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Overlaps reports a positive-area intersection. Rectangles that only share
// an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() &&
		r.Top() < o.Bottom() && o.Top() < r.Bottom()
}

// SpikeField owns the spike batch of one lane.
type SpikeField struct {
	laneWidth  float64
	laneHeight float64
	size       float64
	rng        *rand.Rand
	spikes     []Rect
}

func NewSpikeField(laneWidth, laneHeight float64, rng *rand.Rand) *SpikeField {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &SpikeField{
		laneWidth:  laneWidth,
		laneHeight: laneHeight,
		size:       laneWidth / spikeSizeDivisor,
		rng:        rng,
	}
}

// Place replaces the whole batch with count freshly placed spikes.
func (f *SpikeField) Place(count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: obstacle count must be > 0, got %d", ErrInvalidConfiguration, count)
	}
	scale := f.laneWidth / ReferenceLaneWidth
	y := f.laneHeight - f.size + SpikeFloorOverlap

	batch := make([]Rect, 0, count)
	x := 0.0
	for i := 0; i < count; i++ {
		if i == 0 {
			x = float64(firstSpikeGapMin+f.rng.Intn(firstSpikeGapMax-firstSpikeGapMin)) * scale
		} else {
			x += float64(spikeGapMin+f.rng.Intn(spikeGapMax-spikeGapMin)) * scale
		}
		batch = append(batch, Rect{X: x, Y: y, W: f.size, H: f.size})
	}
	f.spikes = batch
	return nil
}

func (f *SpikeField) Len() int {
	return len(f.spikes)
}

func (f *SpikeField) Size() float64 {
	return f.size
}

// Spikes returns a copy of the current batch.
func (f *SpikeField) Spikes() []Rect {
	return append([]Rect(nil), f.spikes...)
}

// DistancesTo returns, per spike, the signed gap between the spike's left
// edge and r's right edge. Spikes already passed yield negative values.
func (f *SpikeField) DistancesTo(r Rect) []float64 {
	out := make([]float64, len(f.spikes))
	for i, spike := range f.spikes {
		out[i] = spike.Left() - r.Right()
	}
	return out
}

// NearestDistance is the minimum of DistancesTo over the full batch, with no
// filtering by side. An empty batch yields +Inf.
func (f *SpikeField) NearestDistance(r Rect) float64 {
	nearest := math.Inf(1)
	for _, d := range f.DistancesTo(r) {
		if d < nearest {
			nearest = d
		}
	}
	return nearest
}

func (f *SpikeField) Collides(r Rect) bool {
	for _, spike := range f.spikes {
		if r.Overlaps(spike) {
			return true
		}
	}
	return false
}
