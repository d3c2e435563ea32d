// Package openai implements the ai interfaces against OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo. Calls are retried
// with exponential backoff; failures surface as core.ErrEmbeddingUnavailable
// or core.ErrGenerationUnavailable.
package openai
