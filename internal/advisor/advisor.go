// Package advisor asks an OpenAI-compatible chat model for a short,
// prioritised action plan built from a page's score and issues.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/geoanalyzer/internal/cache"
	"github.com/hyperifyio/geoanalyzer/internal/score"
)

// Client is the slice of the chat API the advisor needs. *openai.Client
// satisfies it, as does any OpenAI-compatible adapter.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ErrNotConfigured is returned when no client or model is set.
var ErrNotConfigured = errors.New("advisor not configured")

// ErrEmptyAdvice is returned when the model answers with no content.
var ErrEmptyAdvice = errors.New("model returned no advice")

const defaultSystemPrompt = "You are a generative-engine-optimization consultant. " +
	"Given an automated audit of one web page, write a short prioritised action plan " +
	"in Markdown bullet points. Address the listed issues only, most impactful first, " +
	"and keep it under 200 words."

// Input is what the model sees about one analysed page.
type Input struct {
	URL    string
	Title  string
	Result score.Result
}

// Advisor produces remediation advice. Cache, when set, makes repeated runs
// over an unchanged page free.
type Advisor struct {
	Client Client
	Model  string
	Cache  *cache.AdviceCache
	// SystemPrompt overrides the built-in instructions when non-empty.
	SystemPrompt string
	// MaxTokens caps the answer length. Zero leaves it to the server.
	MaxTokens int
}

// Configured reports whether Advise can reach a model.
func (a *Advisor) Configured() bool {
	return a != nil && a.Client != nil && strings.TrimSpace(a.Model) != ""
}

// Advise returns the model's action plan for in.
func (a *Advisor) Advise(ctx context.Context, in Input) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	system := defaultSystemPrompt
	if strings.TrimSpace(a.SystemPrompt) != "" {
		system = a.SystemPrompt
	}
	user := BuildPrompt(in)
	key := cache.KeyFrom(a.Model, system+"\n\n"+user)

	if a.Cache != nil {
		if e, ok, err := a.Cache.Get(ctx, key); err == nil && ok && strings.TrimSpace(e.Advice) != "" {
			log.Debug().Str("url", in.URL).Msg("advice cache hit")
			return e.Advice, nil
		}
	}

	req := openai.ChatCompletionRequest{
		Model: a.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		N:           1,
		MaxTokens:   a.MaxTokens,
	}
	resp, err := a.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("advice call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyAdvice
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyAdvice
	}
	if a.Cache != nil {
		if err := a.Cache.Save(ctx, key, cache.AdviceEntry{Model: a.Model, URL: in.URL, Advice: out}); err != nil {
			log.Warn().Err(err).Msg("advice cache save failed")
		}
	}
	return out, nil
}

// BuildPrompt renders the audit for the model. Identical audits give
// identical prompts so they share a cache key.
func BuildPrompt(in Input) string {
	r := in.Result
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page: %s\n", in.URL)
	if t := strings.TrimSpace(in.Title); t != "" {
		fmt.Fprintf(&sb, "Title: %s\n", t)
	}
	fmt.Fprintf(&sb, "Score: %.1f/100 (%s, priority %s)\n", r.FinalScore, r.Grade, r.Priority)
	fmt.Fprintf(&sb, "Technical %d/100, Structure %d/100, Authority %d/100\n",
		r.TechnicalScore, r.StructureScore, r.AuthorityScore)
	if len(r.Issues) == 0 {
		sb.WriteString("\nNo issues were detected. Suggest how to keep the page competitive.\n")
		return sb.String()
	}
	sb.WriteString("\nIssues:\n")
	for _, is := range r.Issues {
		fmt.Fprintf(&sb, "- %s [%s]\n", is.Description, is.Effort)
	}
	return sb.String()
}
