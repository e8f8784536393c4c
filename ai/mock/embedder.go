package mock

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/poiesic/recall/core"
)

// Vector length produced by the default mock behavior.
const mockDimensions = 384

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockEmbedder().
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding from the text's character
// n-grams.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return ngramVector(text, mockDimensions), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = ngramVector(text, mockDimensions)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// ngramVector buckets the text's character 1/2/3-grams into a fixed-width
// histogram and normalizes it. Texts sharing content land in shared buckets,
// so related texts genuinely score higher under cosine similarity than
// unrelated ones. Same text always produces the same unit vector.
func ngramVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	runes := []rune(strings.ToLower(text))

	if len(runes) == 0 {
		// Stable direction for empty text.
		vector[0] = 1
		return vector
	}

	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(runes); i++ {
			vector[bucket(string(runes[i:i+n]), dim)]++
		}
	}

	return core.NormalizeVector(vector)
}

func bucket(gram string, dim int) int {
	h := fnv.New32a()
	h.Write([]byte(gram))
	return int(h.Sum32() % uint32(dim))
}
