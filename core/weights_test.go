package core

import (
	"math"
	"testing"
)

func TestAlgorithmWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights AlgorithmWeights
		wantErr bool
	}{
		{"control is valid", ControlWeights(), false},
		{"zero vector is valid", AlgorithmWeights{}, false},
		{"negative weight", AlgorithmWeights{Content: -0.1}, true},
		{"nan weight", AlgorithmWeights{Social: math.NaN()}, true},
		{"inf weight", AlgorithmWeights{Recency: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeightsOrControl(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want AlgorithmWeights
	}{
		{
			name: "valid config",
			data: []byte(`{"content":2,"social":1,"engagement":1,"recency":1,"quality":1,"embedding":0.5}`),
			want: AlgorithmWeights{Content: 2, Social: 1, Engagement: 1, Recency: 1, Quality: 1, Embedding: 0.5},
		},
		{
			name: "malformed json falls back to control",
			data: []byte(`{not json`),
			want: ControlWeights(),
		},
		{
			name: "negative weight falls back to control",
			data: []byte(`{"content":-1}`),
			want: ControlWeights(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightsOrControl(tt.data); got != tt.want {
				t.Errorf("WeightsOrControl() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecommendContext_EffectiveWeights(t *testing.T) {
	empty := &RecommendContext{}
	if got := empty.EffectiveWeights(); got != ControlWeights() {
		t.Errorf("empty context weights = %+v, want control", got)
	}

	custom := &RecommendContext{Weights: AlgorithmWeights{Content: 2}}
	if got := custom.EffectiveWeights(); got.Content != 2 {
		t.Errorf("custom weights = %+v, want content 2", got)
	}
}
