package model

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeEmbeddingRoundTrip(t *testing.T) {
	vec := []float32{1.0, -0.5, 0.25, 3.125}
	blob := EncodeEmbedding(vec)
	if len(blob) != len(vec)*4 {
		t.Fatalf("expected blob length %d, got %d", len(vec)*4, len(blob))
	}

	got, err := DecodeEmbedding(blob)
	if err != nil {
		t.Fatalf("DecodeEmbedding: %v", err)
	}
	if !reflect.DeepEqual(got, vec) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, vec)
	}
}

func TestEncodeEmptyEmbedding(t *testing.T) {
	if blob := EncodeEmbedding(nil); blob != nil {
		t.Fatalf("expected nil blob for nil vector, got %v", blob)
	}
	got, err := DecodeEmbedding(nil)
	if err != nil {
		t.Fatalf("DecodeEmbedding: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil vector for nil blob, got %v", got)
	}
}

func TestDecodeEmbeddingBadLength(t *testing.T) {
	if _, err := DecodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for blob length not divisible by 4")
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0},
		{"mismatched dims", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CosineSimilarity(c.a, c.b)
			if diff := got - c.expected; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("CosineSimilarity(%v, %v) = %v, want %v", c.a, c.b, got, c.expected)
			}
		})
	}
}

func TestClampWeight(t *testing.T) {
	cases := map[float64]float64{-0.5: 0, 0: 0, 0.5: 0.5, 1: 1, 1.5: 1}
	for in, want := range cases {
		if got := ClampWeight(in); got != want {
			t.Fatalf("ClampWeight(%v) = %v, want %v", in, got, want)
		}
	}
}
