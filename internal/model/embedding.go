package model

import (
	"encoding/binary"
	"math"

	"neuralrag/internal/errors"
)

// EncodeEmbedding packs a float32 vector into its little-endian blob
// representation (spec §6 "Embedding blob format"). A nil or empty vector
// encodes to a nil blob, meaning "no embedding".
func EncodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeEmbedding unpacks a little-endian blob into a float32 vector. A
// nil or empty blob decodes to nil. The blob length must be divisible by
// 4; any remainder is an InvalidArgument error.
func DecodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob)%4 != 0 {
		return nil, errors.New(errors.InvalidArgument, "embedding blob length not divisible by 4")
	}
	dim := len(blob) / 4
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}

// CosineSimilarity computes the cosine similarity between two vectors of
// equal dimension. Returns 0 if either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
