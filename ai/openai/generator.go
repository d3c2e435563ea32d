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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/quarry/ai"
	"github.com/poiesic/quarry/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client         llms.Model
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat completion
	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:         client,
		maxRetries:     config.MaxRetries,
		retryBaseDelay: config.RetryBaseDelay,
		logger:         slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate produces a response conditioned on the prompt. The instruction is
// sent as the system message; context and question are sent as the human
// message. An empty context is passed through as-is, leaving it to the model
// to report insufficient information.
func (g *Generator) Generate(ctx context.Context, prompt ai.Prompt) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt.Instruction),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(renderHumanMessage(prompt)),
			},
		},
	}

	var response *llms.ContentResponse
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		response, err = g.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
		return err
	}, g.maxRetries, g.retryBaseDelay)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", fmt.Errorf("%w: %w", core.ErrGenerationUnavailable, err)
	}

	if len(response.Choices) < 1 {
		return "", fmt.Errorf("%w: no choices returned from model", core.ErrGenerationUnavailable)
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

func renderHumanMessage(prompt ai.Prompt) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(prompt.Context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(prompt.Question)
	return b.String()
}
