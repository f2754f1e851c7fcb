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

// Package llm asks an OpenAI-compatible chat model for alternative search
// terms, via the langchaingo client.
package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/boardsearch/suggest"
)

// maxParseAttempts bounds retries on malformed model output.
const maxParseAttempts = 3

// Provider implements suggest.Provider using an OpenAI-compatible chat API.
type Provider struct {
	client llms.Model
	max    int
	logger *slog.Logger
}

// suggestions is the wrapper structure for the model's JSON response.
type suggestions struct {
	Alternatives []string `json:"alternatives"`
}

// NewProvider creates an LLM-backed suggestion provider.
func NewProvider(config *suggest.Config) (*Provider, error) {
	if config == nil {
		config = suggest.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// "none" as token for local OpenAI-compatible services without auth.
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: client,
		max:    config.MaxSuggestions,
		logger: slog.Default().With("component", "llm-suggester"),
	}, nil
}

// Alternatives asks the model for replacement terms. Malformed JSON is
// retried up to maxParseAttempts times.
func (p *Provider) Alternatives(ctx context.Context, terms []string) ([]string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt(p.max))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(strings.Join(terms, ", "))},
		},
	}

	var result suggestions
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := p.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			p.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			p.logger.Debug("no choices returned from model")
			return nil, nil
		}

		text := strings.TrimSpace(response.Choices[0].Content)
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)

		if err := json.Unmarshal([]byte(text), &result); err != nil {
			lastErr = err
			p.logger.Warn("error parsing suggestion response",
				"attempt", attempt+1,
				"response", text,
				"err", err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		p.logger.Error("failed to parse suggestion response after retries", "err", lastErr)
		return nil, lastErr
	}

	if len(result.Alternatives) > p.max {
		result.Alternatives = result.Alternatives[:p.max]
	}
	return result.Alternatives, nil
}
