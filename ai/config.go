// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"os"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// LabelerHost is the base URL for the topic labeling service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	LabelerHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// LabelerModel is the model identifier to use for topic labeling.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	LabelerModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithLabelerHost sets the labeler service host URL.
func WithLabelerHost(host string) ConfigOption {
	return func(c *Config) {
		c.LabelerHost = host
	}
}

// WithHost sets both embedding and labeler hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.LabelerHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithLabelerModel sets the labeler model identifier.
func WithLabelerModel(model string) ConfigOption {
	return func(c *Config) {
		c.LabelerModel = model
	}
}

// DefaultConfig returns a Config for a local OpenAI-compatible runtime,
// honoring the RECALL_AI_HOST, RECALL_EMBEDDING_HOST, RECALL_LABELER_HOST,
// RECALL_EMBEDDING_MODEL, and RECALL_LABELER_MODEL environment variables.
// By default, both embedding and labeler use the same host.
func DefaultConfig() *Config {
	host := envOr("RECALL_AI_HOST", "http://localhost:11434/v1")
	return &Config{
		EmbeddingHost:  envOr("RECALL_EMBEDDING_HOST", host),
		LabelerHost:    envOr("RECALL_LABELER_HOST", host),
		EmbeddingModel: envOr("RECALL_EMBEDDING_MODEL", "embeddinggemma"),
		LabelerModel:   envOr("RECALL_LABELER_MODEL", "qwen2.5:3b"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
//
// Example with different hosts:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithLabelerHost("http://localhost:9100/v1"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.LabelerHost != "" && !strings.HasSuffix(c.LabelerHost, "/v1") {
		c.LabelerHost = strings.TrimSuffix(c.LabelerHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.LabelerHost == "" {
		return errors.New("ai config: LabelerHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.LabelerModel == "" {
		return errors.New("ai config: LabelerModel is required")
	}
	return nil
}
