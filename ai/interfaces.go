package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector is L2-normalized and has the model's fixed dimension.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts,
	// and EmbedTexts([t]) is equivalent to [EmbedText(t)].
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TopicLabeler assigns a short topic label to a span of conversation text.
// Labels feed the context prefix prepended to indexed chunks.
// Implementations must be thread-safe for concurrent use.
type TopicLabeler interface {
	// LabelTopic returns a single lowercase label for the text, preferably
	// from the TopicLabels vocabulary. An empty label with nil error means
	// the labeler could not classify the text.
	LabelTopic(ctx context.Context, text string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and TopicLabeler
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Labeler returns the topic labeling service.
	// The returned TopicLabeler is safe for concurrent use.
	Labeler() TopicLabeler

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
