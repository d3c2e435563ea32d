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


package answer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/quarry/ai"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/retrieve"
)

// DefaultMaxContextChars bounds the assembled context passed to the
// generator, measured in runes.
const DefaultMaxContextChars = 8000

// Answerer produces grounded answers: it retrieves the fragments nearest to
// the question, assembles them into a bounded context in ranked order, and
// hands the context and question to the generator under a fixed instruction.
type Answerer struct {
	retriever       *retrieve.Retriever
	generator       ai.Generator
	maxContextChars int
	logger          *slog.Logger
}

// Result is a generated answer together with the fragments it was
// grounded on, in the ranked order they entered the context.
type Result struct {
	Text      string
	Fragments []core.ScoredFragment
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithMaxContextChars sets the context budget in runes.
// Default is DefaultMaxContextChars.
func WithMaxContextChars(chars int) Option {
	return func(a *Answerer) error {
		if chars < 1 {
			return ErrInvalidContextBudget
		}
		a.maxContextChars = chars
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates an answerer over the given retriever and generator.
func NewAnswerer(retriever *retrieve.Retriever, generator ai.Generator, opts ...Option) (*Answerer, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Answerer{
		retriever:       retriever,
		generator:       generator,
		maxContextChars: DefaultMaxContextChars,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Answer retrieves context for the question and generates a grounded
// response. Zero retrieved fragments still invoke generation with an empty
// context, so an empty or fully-filtered index yields the generator's
// "don't know" behavior rather than an error. Embedding and generation
// failures surface unchanged.
func (a *Answerer) Answer(ctx context.Context, question string) (*Result, error) {
	return a.AnswerWithFilter(ctx, question, nil)
}

// AnswerWithFilter is Answer with the retrieval narrowed by an exact-match
// metadata filter.
func (a *Answerer) AnswerWithFilter(ctx context.Context, question string, filter retrieve.Filter) (*Result, error) {
	hits, err := a.retriever.RetrieveK(ctx, question, a.retriever.TopK(), filter)
	if err != nil && !errors.Is(err, core.ErrEmptyIndex) {
		return nil, err
	}

	included, contextText := a.assembleContext(hits)

	response, err := a.generator.Generate(ctx, ai.Prompt{
		Instruction: answerInstruction,
		Context:     contextText,
		Question:    question,
	})
	if err != nil {
		a.logger.Error("error generating answer", "question", question, "err", err)
		return nil, err
	}

	a.logger.Debug("answered question", "question", question, "fragments", len(included))
	return &Result{
		Text:      response,
		Fragments: included,
	}, nil
}

// assembleContext joins fragment texts in ranked order, stopping before the
// fragment that would push the context past the budget. The first fragment
// is always included, truncated if it alone exceeds the budget.
func (a *Answerer) assembleContext(hits []core.ScoredFragment) ([]core.ScoredFragment, string) {
	var builder strings.Builder
	var included []core.ScoredFragment
	used := 0

	for _, hit := range hits {
		text := []rune(hit.Fragment.Text)
		separator := 0
		if used > 0 {
			separator = 2
		}

		if used+separator+len(text) > a.maxContextChars {
			if used == 0 {
				builder.WriteString(string(text[:a.maxContextChars]))
				included = append(included, hit)
			}
			break
		}

		if separator > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(hit.Fragment.Text)
		used += separator + len(text)
		included = append(included, hit)
	}

	return included, builder.String()
}
