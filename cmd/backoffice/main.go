package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tppkitchen/backoffice/internal/adapter/cli"
	"github.com/tppkitchen/backoffice/internal/adapter/httpapi"
	"github.com/tppkitchen/backoffice/internal/adapter/llm/anthropic"
	"github.com/tppkitchen/backoffice/internal/adapter/llm/gemini"
	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/adapter/observability"
	"github.com/tppkitchen/backoffice/internal/adapter/store/sqlite"
	"github.com/tppkitchen/backoffice/internal/config"
	"github.com/tppkitchen/backoffice/internal/store"
	"github.com/tppkitchen/backoffice/internal/usecase/nutrition"
	"github.com/tppkitchen/backoffice/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "backoffice",
		EnvPrefix:   "TPP",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	obs := buildObservability(cfg.Observability)

	claude, gemini := buildProviders(cfg, obs)

	engine := nutrition.NewEngine(nutrition.Params{
		Claude: claude,
		Gemini: gemini,
		Thresholds: nutrition.Thresholds{
			High:   cfg.Nutrition.HighDeviation,
			Medium: cfg.Nutrition.MediumDeviation,
		},
		Logger: obs.logger,
	})

	// Initialize store if enabled
	var recipeStore store.RecipeStore
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				recipeStore = sqliteStore
				defer recipeStore.Close()
			}
		}
	}

	server := httpapi.NewServer(httpapi.Params{
		Engine:         engine,
		Recipes:        recipeStore,
		Metrics:        obs.metrics,
		Logger:         obs.logger,
		RequestTimeout: parseTimeout(cfg.Server.RequestTimeout, 55*time.Second),
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Analyzer:       engine,
		Server:         server,
		Recipes:        recipeStore,
		DefaultAddress: cfg.Server.Address,
		Version:        version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "backoffice"))
	}
	return paths
}

// observabilityComponents holds shared observability instances
type observabilityComponents struct {
	logger  llmhttp.Logger
	metrics llmhttp.Metrics
}

// buildObservability creates observability components based on configuration
func buildObservability(cfg config.ObservabilityConfig) observabilityComponents {
	var logger llmhttp.Logger
	var metrics llmhttp.Metrics

	if cfg.Logging.Enabled {
		logger = observability.NewLogger(cfg.Logging)
	}

	if cfg.Metrics.Enabled {
		metrics = llmhttp.NewDefaultMetrics()
	}

	return observabilityComponents{
		logger:  logger,
		metrics: metrics,
	}
}

// buildProviders constructs the two model adapters. A provider that is
// disabled or missing its API key comes back nil; the engine degrades
// to single-provider (or fails with a configuration error when both
// are out).
func buildProviders(cfg config.Config, obs observabilityComponents) (nutrition.Provider, nutrition.Provider) {
	temperature := cfg.Nutrition.Temperature
	maxTokens := cfg.Nutrition.MaxOutputTokens

	var claude nutrition.Provider
	if providerCfg, ok := cfg.Providers["claude"]; ok && providerCfg.Enabled {
		model := providerCfg.Model
		if model == "" {
			model = "claude-3-5-sonnet-20241022"
		}
		if providerCfg.APIKey == "" {
			log.Println("Claude: No API key provided, skipping provider")
		} else {
			client := anthropic.NewHTTPClient(providerCfg.APIKey, model, providerCfg, cfg.HTTP)
			if obs.logger != nil {
				client.SetLogger(obs.logger)
			}
			if obs.metrics != nil {
				client.SetMetrics(obs.metrics)
			}
			claude = anthropic.NewProvider(client, anthropic.Options{
				Temperature: temperature,
				MaxTokens:   maxTokens,
			})
		}
	}

	var geminiProvider nutrition.Provider
	if providerCfg, ok := cfg.Providers["gemini"]; ok && providerCfg.Enabled {
		model := providerCfg.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		if providerCfg.APIKey == "" {
			log.Println("Gemini: No API key provided, skipping provider")
		} else {
			client := gemini.NewHTTPClient(providerCfg.APIKey, model, providerCfg, cfg.HTTP)
			if obs.logger != nil {
				client.SetLogger(obs.logger)
			}
			if obs.metrics != nil {
				client.SetMetrics(obs.metrics)
			}
			geminiProvider = gemini.NewProvider(client, gemini.Options{
				Temperature: temperature,
				MaxTokens:   maxTokens,
			})
		}
	}

	return claude, geminiProvider
}

func parseTimeout(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("warning: invalid request timeout %q, using default %s", value, fallback)
		return fallback
	}
	return parsed
}

// Compile-time interface compliance checks
var _ nutrition.Provider = (*anthropic.Provider)(nil)
var _ nutrition.Provider = (*gemini.Provider)(nil)
var _ store.RecipeStore = (*sqlite.Store)(nil)
var _ llmhttp.Logger = (*observability.Logger)(nil)
