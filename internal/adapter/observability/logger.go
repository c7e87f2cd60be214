package observability

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/config"
)

// Logger implements llmhttp.Logger on top of apex/log.
type Logger struct {
	log        *log.Logger
	redactKeys bool
	caser      cases.Caser
}

// NewLogger builds a logger from config. Format "auto" picks the
// human-readable handler when stderr is a terminal and JSON otherwise,
// so service deployments get machine-parseable logs without any
// configuration.
func NewLogger(cfg config.LoggingConfig) *Logger {
	handler := log.Handler(json.New(os.Stderr))
	if resolveFormat(cfg.Format) == "human" {
		handler = cli.New(os.Stderr)
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	return &Logger{
		log: &log.Logger{
			Handler: handler,
			Level:   level,
		},
		redactKeys: cfg.RedactAPIKeys,
		caser:      cases.Title(language.English),
	}
}

// resolveFormat maps the configured format to "human" or "json".
func resolveFormat(format string) string {
	switch format {
	case "human", "json":
		return format
	default:
		if term.IsTerminal(int(os.Stderr.Fd())) {
			return "human"
		}
		return "json"
	}
}

// LogRequest logs an outgoing provider API request.
func (l *Logger) LogRequest(ctx context.Context, req llmhttp.RequestLog) {
	key := req.APIKey
	if l.redactKeys {
		key = llmhttp.RedactAPIKey(key)
	}

	l.log.WithFields(log.Fields{
		"provider":     req.Provider,
		"model":        req.Model,
		"prompt_chars": req.PromptChars,
		"api_key":      key,
	}).Debugf("%s request sent", l.caser.String(req.Provider))
}

// LogResponse logs a provider API response with timing and token info.
func (l *Logger) LogResponse(ctx context.Context, resp llmhttp.ResponseLog) {
	l.log.WithFields(log.Fields{
		"provider":      resp.Provider,
		"model":         resp.Model,
		"duration_ms":   resp.Duration.Milliseconds(),
		"tokens_in":     resp.TokensIn,
		"tokens_out":    resp.TokensOut,
		"status_code":   resp.StatusCode,
		"finish_reason": resp.FinishReason,
	}).Infof("%s responded", l.caser.String(resp.Provider))
}

// LogError logs a provider API error.
func (l *Logger) LogError(ctx context.Context, errLog llmhttp.ErrorLog) {
	l.log.WithFields(log.Fields{
		"provider":    errLog.Provider,
		"model":       errLog.Model,
		"duration_ms": errLog.Duration.Milliseconds(),
		"error":       llmhttp.RedactURLSecrets(errLog.Error.Error()),
		"error_type":  errLog.ErrorType.String(),
		"status_code": errLog.StatusCode,
		"retryable":   errLog.Retryable,
	}).Errorf("%s call failed", l.caser.String(errLog.Provider))
}

// LogInfo logs an informational message with structured fields.
func (l *Logger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.log.WithFields(log.Fields(fields)).Info(message)
}

// LogWarning logs a warning message with structured fields.
func (l *Logger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.log.WithFields(log.Fields(fields)).Warn(message)
}

// Printf satisfies ad-hoc logging needs in wiring code.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}
