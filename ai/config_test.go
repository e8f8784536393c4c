package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LabelerHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.LabelerModel)
}

func TestDefaultConfig_Environment(t *testing.T) {
	t.Run("shared host", func(t *testing.T) {
		t.Setenv("RECALL_AI_HOST", "http://shared:8080/v1")

		cfg := DefaultConfig()
		assert.Equal(t, "http://shared:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://shared:8080/v1", cfg.LabelerHost)
	})

	t.Run("specific hosts win over shared", func(t *testing.T) {
		t.Setenv("RECALL_AI_HOST", "http://shared:8080/v1")
		t.Setenv("RECALL_EMBEDDING_HOST", "http://embed:8080/v1")

		cfg := DefaultConfig()
		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://shared:8080/v1", cfg.LabelerHost)
	})

	t.Run("models", func(t *testing.T) {
		t.Setenv("RECALL_EMBEDDING_MODEL", "custom-embed")
		t.Setenv("RECALL_LABELER_MODEL", "custom-labeler")

		cfg := DefaultConfig()
		assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
		assert.Equal(t, "custom-labeler", cfg.LabelerModel)
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LabelerHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.LabelerHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithLabelerHost("http://label:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://label:9090/v1", cfg.LabelerHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithLabelerModel("gpt-4o-mini"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.LabelerModel)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithEmbeddingModel("custom-embed"),
			WithLabelerModel("custom-label"),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.LabelerHost)
		assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
		assert.Equal(t, "custom-label", cfg.LabelerModel)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name            string
		embeddingHost   string
		labelerHost     string
		expectedEmbed   string
		expectedLabeler string
	}{
		{
			name:            "already has /v1",
			embeddingHost:   "http://localhost:11434/v1",
			labelerHost:     "http://localhost:11434/v1",
			expectedEmbed:   "http://localhost:11434/v1",
			expectedLabeler: "http://localhost:11434/v1",
		},
		{
			name:            "missing /v1",
			embeddingHost:   "http://localhost:11434",
			labelerHost:     "http://localhost:11434",
			expectedEmbed:   "http://localhost:11434/v1",
			expectedLabeler: "http://localhost:11434/v1",
		},
		{
			name:            "has trailing slash",
			embeddingHost:   "http://localhost:11434/",
			labelerHost:     "http://localhost:11434/",
			expectedEmbed:   "http://localhost:11434/v1",
			expectedLabeler: "http://localhost:11434/v1",
		},
		{
			name:            "empty hosts",
			embeddingHost:   "",
			labelerHost:     "",
			expectedEmbed:   "",
			expectedLabeler: "",
		},
		{
			name:            "different formats",
			embeddingHost:   "http://embed:8080",
			labelerHost:     "http://label:9090/v1",
			expectedEmbed:   "http://embed:8080/v1",
			expectedLabeler: "http://label:9090/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				LabelerHost:   tt.labelerHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbed, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedLabeler, cfg.LabelerHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{
			EmbeddingHost:  "http://localhost:11434",
			LabelerHost:    "http://localhost:11434",
			EmbeddingModel: "embeddinggemma",
			LabelerModel:   "qwen2.5:3b",
		}

		err := cfg.Validate()
		assert.NoError(t, err)

		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LabelerHost)
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := &Config{
			LabelerHost:    "http://localhost:11434/v1",
			EmbeddingModel: "embeddinggemma",
			LabelerModel:   "qwen2.5:3b",
		}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("missing labeler host", func(t *testing.T) {
		cfg := &Config{
			EmbeddingHost:  "http://localhost:11434/v1",
			EmbeddingModel: "embeddinggemma",
			LabelerModel:   "qwen2.5:3b",
		}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "LabelerHost")
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := &Config{
			EmbeddingHost: "http://localhost:11434/v1",
			LabelerHost:   "http://localhost:11434/v1",
			LabelerModel:  "qwen2.5:3b",
		}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")
	})

	t.Run("missing labeler model", func(t *testing.T) {
		cfg := &Config{
			EmbeddingHost:  "http://localhost:11434/v1",
			LabelerHost:    "http://localhost:11434/v1",
			EmbeddingModel: "embeddinggemma",
		}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "LabelerModel")
	})
}

func TestConfigOptions(t *testing.T) {
	t.Run("WithEmbeddingHost", func(t *testing.T) {
		cfg := &Config{}
		opt := WithEmbeddingHost("http://test:8080/v1")
		opt(cfg)

		assert.Equal(t, "http://test:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("WithLabelerHost", func(t *testing.T) {
		cfg := &Config{}
		opt := WithLabelerHost("http://test:9090/v1")
		opt(cfg)

		assert.Equal(t, "http://test:9090/v1", cfg.LabelerHost)
	})

	t.Run("WithHost sets both", func(t *testing.T) {
		cfg := &Config{}
		opt := WithHost("http://test:8080/v1")
		opt(cfg)

		assert.Equal(t, "http://test:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://test:8080/v1", cfg.LabelerHost)
	})

	t.Run("WithEmbeddingModel", func(t *testing.T) {
		cfg := &Config{}
		opt := WithEmbeddingModel("test-model")
		opt(cfg)

		assert.Equal(t, "test-model", cfg.EmbeddingModel)
	})

	t.Run("WithLabelerModel", func(t *testing.T) {
		cfg := &Config{}
		opt := WithLabelerModel("test-labeler")
		opt(cfg)

		assert.Equal(t, "test-labeler", cfg.LabelerModel)
	})
}

func TestConfigValidate_Integration(t *testing.T) {
	// Test that NewConfig produces a valid configuration
	cfg := NewConfig()
	err := cfg.Validate()
	require.NoError(t, err)

	// Test that DefaultConfig produces a valid configuration
	cfg = DefaultConfig()
	err = cfg.Validate()
	require.NoError(t, err)
}
