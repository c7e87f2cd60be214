package store

import (
	"context"
	"errors"
	"time"

	"github.com/tppkitchen/backoffice/internal/domain"
)

// ErrNotFound is returned when a recipe does not exist.
var ErrNotFound = errors.New("recipe not found")

// Recipe is one persisted recipe record with its ingredient lines.
type Recipe struct {
	ID          int64
	Title       string
	Servings    int
	Ingredients []domain.IngredientLine
	CreatedAt   time.Time
}

// NutritionRecord is the persisted outcome of a nutrition analysis.
type NutritionRecord struct {
	Nutrition  domain.NutrientSet
	Method     domain.Method
	Confidence domain.Confidence
	UpdatedAt  time.Time
}

// RecipeStore is the persistence port for recipes and their nutrition
// write-back.
type RecipeStore interface {
	// CreateRecipe stores a recipe with its ingredient lines and returns
	// the assigned id.
	CreateRecipe(ctx context.Context, recipe Recipe) (int64, error)

	// GetRecipe loads a recipe and its ingredient lines.
	// Returns ErrNotFound for unknown ids.
	GetRecipe(ctx context.Context, id int64) (Recipe, error)

	// SaveNutrition upserts the analysis outcome for a recipe.
	SaveNutrition(ctx context.Context, recipeID int64, record NutritionRecord) error

	// GetNutrition loads the stored analysis outcome for a recipe.
	// Returns ErrNotFound when none has been saved.
	GetNutrition(ctx context.Context, recipeID int64) (NutritionRecord, error)

	// Close releases the underlying database handle.
	Close() error
}
