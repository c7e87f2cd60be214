package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/domain"
	"github.com/tppkitchen/backoffice/internal/store"
	"github.com/tppkitchen/backoffice/internal/usecase/nutrition"
)

type ingredientPayload struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Item   string `json:"item"`
	Notes  string `json:"notes,omitempty"`
}

type analyzeRequest struct {
	Title       string              `json:"title"`
	Servings    int                 `json:"servings"`
	Ingredients []ingredientPayload `json:"ingredients"`
}

type analyzeMeta struct {
	Method      string `json:"method"`
	Confidence  string `json:"confidence"`
	Claude      string `json:"claude"`
	Gemini      string `json:"gemini"`
	ClaudeError string `json:"claude_error,omitempty"`
	GeminiError string `json:"gemini_error,omitempty"`
}

type analyzeResponse struct {
	Success   bool                `json:"success"`
	Nutrition domain.NutrientSet  `json:"nutrition"`
	Meta      analyzeMeta         `json:"meta"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAnalyze runs the estimation engine against a request body.
// A partial provider failure is still HTTP 200; callers must inspect
// meta.confidence and meta.method, not just the status code.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := s.analyze(c.Request.Context(), domain.AnalysisRequest{
		Title:       req.Title,
		Servings:    req.Servings,
		Ingredients: toDomainLines(req.Ingredients),
	})
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(result))
}

// handleRecipeNutrition analyzes a stored recipe and writes the
// resulting nutrition fields back to the store.
func (s *Server) handleRecipeNutrition(c *gin.Context) {
	if s.recipes == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "recipe store disabled"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid recipe id"})
		return
	}

	recipe, err := s.recipes.GetRecipe(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.analyze(c.Request.Context(), domain.AnalysisRequest{
		Title:       recipe.Title,
		Servings:    recipe.Servings,
		Ingredients: recipe.Ingredients,
	})
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	saveErr := s.recipes.SaveNutrition(c.Request.Context(), id, store.NutritionRecord{
		Nutrition:  result.Nutrition,
		Method:     result.Method,
		Confidence: result.Confidence,
		UpdatedAt:  time.Now(),
	})
	if saveErr != nil && s.logger != nil {
		// The estimate itself succeeded; losing the write-back should not
		// fail the request.
		s.logger.LogWarning(c.Request.Context(), "nutrition write-back failed", map[string]interface{}{
			"recipe_id": id,
			"error":     saveErr.Error(),
		})
	}

	c.JSON(http.StatusOK, toResponse(result))
}

// handleStats exposes aggregate provider call metrics.
func (s *Server) handleStats(c *gin.Context) {
	if s.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, s.metrics.GetStats())
}

// analyze runs the engine under the request-level timeout.
func (s *Server) analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.engine.Analyze(ctx, req)
}

// writeAnalysisError maps engine errors to the response contract.
func (s *Server) writeAnalysisError(c *gin.Context, err error) {
	var validationErr *nutrition.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
		return
	}

	var configErr *nutrition.ConfigurationError
	if errors.As(err, &configErr) {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: configErr.Error()})
		return
	}

	var allFailedErr *nutrition.AllProvidersFailedError
	if errors.As(err, &allFailedErr) {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: llmhttp.RedactURLSecrets(allFailedErr.Error())})
		return
	}

	c.JSON(http.StatusInternalServerError, errorResponse{Error: llmhttp.RedactURLSecrets(err.Error())})
}

func toDomainLines(payload []ingredientPayload) []domain.IngredientLine {
	lines := make([]domain.IngredientLine, 0, len(payload))
	for _, p := range payload {
		lines = append(lines, domain.IngredientLine{
			Amount: p.Amount,
			Unit:   p.Unit,
			Item:   p.Item,
			Notes:  p.Notes,
		})
	}
	return lines
}

func toResponse(result domain.AnalysisResult) analyzeResponse {
	return analyzeResponse{
		Success:   true,
		Nutrition: result.Nutrition,
		Meta: analyzeMeta{
			Method:      string(result.Method),
			Confidence:  string(result.Confidence),
			Claude:      string(result.Claude),
			Gemini:      string(result.Gemini),
			ClaudeError: llmhttp.RedactURLSecrets(result.ClaudeError),
			GeminiError: llmhttp.RedactURLSecrets(result.GeminiError),
		},
	}
}
