package gemini

import (
	"context"
	"fmt"

	"github.com/tppkitchen/backoffice/internal/adapter/llm"
	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/domain"
)

const providerName = "gemini"

// Client abstracts the Gemini HTTP client behaviour we need.
type Client interface {
	Call(ctx context.Context, prompt string, options CallOptions) (llm.Completion, error)
}

// Options tunes the analysis calls issued by the provider.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Provider turns Gemini completions into nutrient estimates.
type Provider struct {
	client Client
	opts   Options
}

// NewProvider constructs a Provider around the supplied client.
func NewProvider(client Client, opts Options) *Provider {
	return &Provider{
		client: client,
		opts:   opts,
	}
}

// Name returns the adapter identity.
func (p *Provider) Name() string {
	return providerName
}

// Analyze sends the prompt to Gemini and parses the eight-field
// nutrient object out of the completion.
func (p *Provider) Analyze(ctx context.Context, prompt string) (domain.NutrientSet, error) {
	if p.client == nil {
		return domain.NutrientSet{}, fmt.Errorf("gemini client missing")
	}

	completion, err := p.client.Call(ctx, prompt, CallOptions{
		Temperature: p.opts.Temperature,
		MaxTokens:   p.opts.MaxTokens,
	})
	if err != nil {
		return domain.NutrientSet{}, err
	}

	set, err := llmhttp.ParseNutrientSet(completion.Text)
	if err != nil {
		return domain.NutrientSet{}, llmhttp.NewMalformedOutputError(providerName, err.Error())
	}

	return set, nil
}
