package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on punctuation",
			text: "Transformer-based Retrieval, Augmented!",
			want: []string{"transformer", "retrieval", "augmented"},
		},
		{
			name: "drops stopwords and short tokens",
			text: "the results of an ML run",
			want: []string{"run"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywords_FrequencyOrder(t *testing.T) {
	text := "neural neural neural retrieval retrieval ranking"
	got := Keywords(text, 2)
	want := []string{"neural", "retrieval"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}
}

func TestKeywords_StableTieBreak(t *testing.T) {
	got := Keywords("zebra apple", 10)
	want := []string{"apple", "zebra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want lexicographic %v", got, want)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical sets", []string{"AI", "NLP"}, []string{"AI", "NLP"}, 1.0},
		{"one third overlap", []string{"AI", "NLP"}, []string{"AI", "Vision"}, 1.0 / 3.0},
		{"case insensitive", []string{"AI"}, []string{"ai"}, 1.0},
		{"disjoint", []string{"AI"}, []string{"databases"}, 0},
		{"empty side", nil, []string{"AI"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
		})
	}
}
