package nn

import (
	"errors"
	"math"
	"testing"

	"spikejump/internal/model"
)

func TestForwardSimpleFeedForward(t *testing.T) {
	genome := model.Genome{
		Neurons: []model.Neuron{
			{ID: "i1", Activation: "identity"},
			{ID: "i2", Activation: "identity"},
			{ID: "o", Activation: "identity", Bias: 0.5},
		},
		Synapses: []model.Synapse{
			{From: "i1", To: "o", Weight: 2, Enabled: true},
			{From: "i2", To: "o", Weight: -1, Enabled: true},
		},
	}

	values, err := Forward(genome, map[string]float64{"i1": 1.0, "i2": 0.25})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	want := 2.25
	if math.Abs(values["o"]-want) > 1e-9 {
		t.Fatalf("unexpected output: got=%f want=%f", values["o"], want)
	}
}

func TestForwardSkipsDisabledSynapses(t *testing.T) {
	genome := model.Genome{
		Neurons: []model.Neuron{
			{ID: "i", Activation: "identity"},
			{ID: "o", Activation: "identity"},
		},
		Synapses: []model.Synapse{
			{From: "i", To: "o", Weight: 3, Enabled: false},
		},
	}

	values, err := Forward(genome, map[string]float64{"i": 1})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if values["o"] != 0 {
		t.Fatalf("expected disabled synapse to be ignored, got %f", values["o"])
	}
}

func TestForwardUnsupportedActivation(t *testing.T) {
	genome := model.Genome{
		Neurons: []model.Neuron{{ID: "o", Activation: "unknown"}},
	}

	_, err := Forward(genome, map[string]float64{})
	if !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected ErrActivationNotFound, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		genome  model.Genome
		wantErr bool
	}{
		{
			name: "valid",
			genome: model.Genome{
				Neurons:  []model.Neuron{{ID: "a"}, {ID: "b"}},
				Synapses: []model.Synapse{{ID: "s", From: "a", To: "b"}},
			},
		},
		{
			name:    "duplicate neuron",
			genome:  model.Genome{Neurons: []model.Neuron{{ID: "a"}, {ID: "a"}}},
			wantErr: true,
		},
		{
			name:    "empty neuron id",
			genome:  model.Genome{Neurons: []model.Neuron{{ID: ""}}},
			wantErr: true,
		},
		{
			name: "dangling synapse",
			genome: model.Genome{
				Neurons:  []model.Neuron{{ID: "a"}},
				Synapses: []model.Synapse{{ID: "s", From: "a", To: "missing"}},
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.genome)
			if tc.wantErr && !errors.Is(err, ErrInvalidGenome) {
				t.Fatalf("expected ErrInvalidGenome, got: %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("validate: %v", err)
			}
		})
	}
}

func TestApplyActivation(t *testing.T) {
	tests := []struct {
		name  string
		act   string
		x     float64
		want  float64
		delta float64
	}{
		{name: "identity", act: "identity", x: 2.5, want: 2.5, delta: 1e-9},
		{name: "relu-negative", act: "relu", x: -1, want: 0, delta: 1e-9},
		{name: "relu-positive", act: "relu", x: 3, want: 3, delta: 1e-9},
		{name: "tanh", act: "tanh", x: 0, want: 0, delta: 1e-9},
		{name: "sigmoid", act: "sigmoid", x: 0, want: 0.5, delta: 1e-9},
		{name: "step-zero", act: "step", x: 0, want: 0, delta: 1e-9},
		{name: "step-positive", act: "step", x: 0.1, want: 1, delta: 1e-9},
		{name: "gaussian", act: "gaussian", x: 0, want: 1, delta: 1e-9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn, err := GetActivation(tc.act)
			if err != nil {
				t.Fatalf("get activation: %v", err)
			}
			if got := fn(tc.x); math.Abs(got-tc.want) > tc.delta {
				t.Fatalf("unexpected value: got=%f want=%f", got, tc.want)
			}
		})
	}
}
