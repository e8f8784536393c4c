package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "empty vector",
			input:    []float32{},
			expected: []float32{},
		},
		{
			name:     "zero vector",
			input:    []float32{0, 0, 0},
			expected: []float32{0, 0, 0},
		},
		{
			name:     "unit vector unchanged",
			input:    []float32{1, 0, 0},
			expected: []float32{1, 0, 0},
		},
		{
			name:     "simple vector",
			input:    []float32{3, 4},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "negative components",
			input:    []float32{-3, 4},
			expected: []float32{-0.6, 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)

			require.Equal(t, len(tt.expected), len(result))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6)
			}
		})
	}
}

func TestNormalizeVector_Magnitude(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{0.1, 0.2, 0.3, 0.4},
		{-5, 10, -15},
		{100, 200},
	}

	for _, v := range vectors {
		result := NormalizeVector(v)
		assert.InDelta(t, 1.0, VectorNorm(result), 1e-6)
	}
}

func TestNormalizeVector_DoesNotMutateInput(t *testing.T) {
	input := []float32{3, 4}
	_ = NormalizeVector(input)

	assert.Equal(t, float32(3), input[0])
	assert.Equal(t, float32(4), input[1])
}

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float32
	}{
		{
			name:     "orthogonal",
			a:        []float32{1, 0},
			b:        []float32{0, 1},
			expected: 0,
		},
		{
			name:     "parallel unit vectors",
			a:        []float32{1, 0},
			b:        []float32{1, 0},
			expected: 1,
		},
		{
			name:     "opposite unit vectors",
			a:        []float32{0, 1},
			b:        []float32{0, -1},
			expected: -1,
		},
		{
			name:     "general case",
			a:        []float32{1, 2, 3},
			b:        []float32{4, 5, 6},
			expected: 32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-6)
		})
	}
}

func TestDot_CosineOfNormalized(t *testing.T) {
	a := NormalizeVector([]float32{1, 2, 3})
	b := NormalizeVector([]float32{2, 4, 6})

	// Same direction after normalization, cosine is 1.
	assert.InDelta(t, 1.0, Dot(a, b), 1e-6)
}

func TestVectorNorm(t *testing.T) {
	assert.InDelta(t, 5.0, VectorNorm([]float32{3, 4}), 1e-9)
	assert.InDelta(t, 0.0, VectorNorm([]float32{0, 0, 0}), 1e-9)
	assert.InDelta(t, math.Sqrt(3), VectorNorm([]float32{1, 1, 1}), 1e-6)
}
