package nutrition

import (
	"context"
	"fmt"
	"sync"

	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/domain"
)

// Provider is the port implemented by each model adapter.
type Provider interface {
	// Name returns the adapter identity ("claude" or "gemini").
	Name() string

	// Analyze sends the prompt to the backing model and returns a fully
	// validated nutrient set, or an error describing the failure.
	Analyze(ctx context.Context, prompt string) (domain.NutrientSet, error)
}

// Params are the collaborators for the engine. Either provider may be
// nil; the engine then runs in degraded single-provider mode. Logger is
// optional.
type Params struct {
	Claude     Provider
	Gemini     Provider
	Thresholds Thresholds
	Logger     llmhttp.Logger
}

// Engine is the dual-model estimation and cross-validation engine.
type Engine struct {
	claude     Provider
	gemini     Provider
	thresholds Thresholds
	logger     llmhttp.Logger
}

// NewEngine constructs the engine. Zero thresholds fall back to the
// defaults.
func NewEngine(p Params) *Engine {
	t := p.Thresholds
	if t.High <= 0 || t.Medium <= 0 {
		t = DefaultThresholds()
	}
	return &Engine{
		claude:     p.Claude,
		gemini:     p.Gemini,
		thresholds: t,
		logger:     p.Logger,
	}
}

// outcome is one adapter's settled result: exactly one of set or err.
type outcome struct {
	set *domain.NutrientSet
	err error
}

// Analyze validates the request, queries both providers concurrently,
// and reconciles their answers. Provider failures are absorbed here and
// reported through the result; only ValidationError, ConfigurationError
// and AllProvidersFailedError escape as errors.
func (e *Engine) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	lines := domain.FilterIngredients(req.Ingredients)
	if len(lines) == 0 {
		return domain.AnalysisResult{}, &ValidationError{Reason: "no renderable ingredient lines"}
	}

	if e.claude == nil && e.gemini == nil {
		return domain.AnalysisResult{}, &ConfigurationError{Reason: "no provider credentials configured"}
	}

	prompt, err := BuildPrompt(req.Title, req.Servings, lines)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	claudeOut, geminiOut := e.fanOut(ctx, prompt)

	e.logFailure(ctx, "claude", claudeOut.err)
	e.logFailure(ctx, "gemini", geminiOut.err)

	result, err := Reconcile(claudeOut.set, geminiOut.set, claudeOut.err, geminiOut.err, e.thresholds)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	if e.logger != nil {
		e.logger.LogInfo(ctx, "nutrition estimate reconciled", map[string]interface{}{
			"method":     string(result.Method),
			"confidence": string(result.Confidence),
		})
	}

	return result, nil
}

// fanOut issues both provider calls together and waits for both to
// settle. It must not short-circuit on the first success: a partial
// result is a different, lower-trust outcome than a dual average. An
// unconfigured provider settles immediately as a credential failure
// without a remote call.
func (e *Engine) fanOut(ctx context.Context, prompt string) (claudeOut, geminiOut outcome) {
	type named struct {
		name string
		out  outcome
	}

	providers := make([]Provider, 0, 2)
	for _, p := range []Provider{e.claude, e.gemini} {
		if p != nil {
			providers = append(providers, p)
		}
	}

	results := make(chan named, len(providers))
	var wg sync.WaitGroup

	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer func() {
				if r := recover(); r != nil {
					results <- named{p.Name(), outcome{err: fmt.Errorf("provider %s panicked: %v", p.Name(), r)}}
				}
				wg.Done()
			}()

			set, err := p.Analyze(ctx, prompt)
			if err != nil {
				results <- named{p.Name(), outcome{err: err}}
				return
			}
			results <- named{p.Name(), outcome{set: &set}}
		}(p)
	}

	wg.Wait()
	close(results)

	claudeOut = outcome{err: llmhttp.NewAuthenticationError("claude", "no API key configured")}
	geminiOut = outcome{err: llmhttp.NewAuthenticationError("gemini", "no API key configured")}

	for r := range results {
		switch r.name {
		case "claude":
			claudeOut = r.out
		case "gemini":
			geminiOut = r.out
		}
	}

	return claudeOut, geminiOut
}

// logFailure records one provider failure with its identity. Messages
// pass through URL redaction because Gemini carries its key in the
// request URL.
func (e *Engine) logFailure(ctx context.Context, provider string, err error) {
	if err == nil || e.logger == nil {
		return
	}
	e.logger.LogWarning(ctx, "nutrition provider failed", map[string]interface{}{
		"provider": provider,
		"error":    llmhttp.RedactURLSecrets(err.Error()),
	})
}
