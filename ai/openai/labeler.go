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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/recall/ai"
)

// TopicLabeler implements ai.TopicLabeler using OpenAI-compatible chat APIs.
type TopicLabeler struct {
	client llms.Model
	logger *slog.Logger
}

// topicAnswer matches the JSON shape requested from the model.
type topicAnswer struct {
	Topic string `json:"topic"`
}

// newTopicLabeler is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTopicLabeler(config *ai.Config) (*TopicLabeler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.LabelerHost),
		openai.WithToken("none"),
		openai.WithModel(config.LabelerModel),
	)
	if err != nil {
		return nil, err
	}

	return &TopicLabeler{
		client: client,
		logger: slog.Default().With("component", "openai-labeler"),
	}, nil
}

// NewTopicLabeler creates a new topic labeler using the provided configuration.
//
// Returns ai.TopicLabeler interface to enforce abstraction.
func NewTopicLabeler(config *ai.Config) (ai.TopicLabeler, error) {
	return newTopicLabeler(config)
}

// LabelTopic asks the chat model for a single topic label.
// The label is lowercased with spaces folded to underscores; an empty label
// with nil error means the model declined to classify.
func (l *TopicLabeler) LabelTopic(ctx context.Context, text string) (string, error) {
	text = scrubString(text)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildTopicPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var answer topicAnswer
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := l.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			l.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return "", err
		}

		if len(response.Choices) < 1 {
			l.logger.Debug("no choices returned from model")
			return "", nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &answer); err != nil {
			lastErr = err
			l.logger.Warn("error parsing labeler response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		l.logger.Error("failed to parse labeler response after retries", "err", lastErr)
		return "", lastErr
	}

	label := sanitizeLabel(answer.Topic)
	l.logger.Debug("labeled topic", "label", label)
	return label, nil
}

// sanitizeLabel canonicalizes a model-produced label: lowercase, trimmed,
// inner whitespace folded to underscores.
func sanitizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.Join(strings.Fields(label), "_")
}
