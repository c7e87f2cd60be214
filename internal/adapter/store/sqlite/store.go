package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tppkitchen/backoffice/internal/domain"
	"github.com/tppkitchen/backoffice/internal/store"
)

// Store implements store.RecipeStore using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		recipe_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		servings INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	-- Free-text ingredient lines, kept verbatim; position preserves
	-- authoring order for prompt construction.
	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		ingredient_id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipe_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		amount TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		item TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE
	);

	-- One analysis outcome per recipe, overwritten on re-analysis.
	CREATE TABLE IF NOT EXISTS recipe_nutrition (
		recipe_id INTEGER PRIMARY KEY,
		calories REAL NOT NULL,
		protein REAL NOT NULL,
		fat REAL NOT NULL,
		saturated_fat REAL NOT NULL,
		carbs REAL NOT NULL,
		sugars REAL NOT NULL,
		fiber REAL NOT NULL,
		sodium REAL NOT NULL,
		method TEXT NOT NULL,
		confidence TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON recipe_ingredients(recipe_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRecipe stores a recipe with its ingredient lines.
func (s *Store) CreateRecipe(ctx context.Context, recipe store.Recipe) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := recipe.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	servings := recipe.Servings
	if servings < 1 {
		servings = 1
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (title, servings, created_at) VALUES (?, ?, ?)`,
		recipe.Title, servings, createdAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recipe id: %w", err)
	}

	for i, line := range recipe.Ingredients {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, position, amount, unit, item, notes)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, line.Amount, line.Unit, line.Item, line.Notes,
		)
		if err != nil {
			return 0, fmt.Errorf("insert ingredient %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return id, nil
}

// GetRecipe loads a recipe and its ingredient lines.
func (s *Store) GetRecipe(ctx context.Context, id int64) (store.Recipe, error) {
	var recipe store.Recipe
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT recipe_id, title, servings, created_at FROM recipes WHERE recipe_id = ?`,
		id,
	).Scan(&recipe.ID, &recipe.Title, &recipe.Servings, &createdAt)
	if err == sql.ErrNoRows {
		return store.Recipe{}, store.ErrNotFound
	}
	if err != nil {
		return store.Recipe{}, fmt.Errorf("query recipe: %w", err)
	}
	recipe.CreatedAt = time.Unix(createdAt, 0)

	rows, err := s.db.QueryContext(ctx,
		`SELECT amount, unit, item, notes FROM recipe_ingredients
		 WHERE recipe_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return store.Recipe{}, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.IngredientLine
		if err := rows.Scan(&line.Amount, &line.Unit, &line.Item, &line.Notes); err != nil {
			return store.Recipe{}, fmt.Errorf("scan ingredient: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return store.Recipe{}, fmt.Errorf("iterate ingredients: %w", err)
	}

	return recipe, nil
}

// SaveNutrition upserts the analysis outcome for a recipe.
func (s *Store) SaveNutrition(ctx context.Context, recipeID int64, record store.NutritionRecord) error {
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	n := record.Nutrition
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipe_nutrition
			(recipe_id, calories, protein, fat, saturated_fat, carbs, sugars, fiber, sodium, method, confidence, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(recipe_id) DO UPDATE SET
			calories=excluded.calories, protein=excluded.protein, fat=excluded.fat,
			saturated_fat=excluded.saturated_fat, carbs=excluded.carbs, sugars=excluded.sugars,
			fiber=excluded.fiber, sodium=excluded.sodium, method=excluded.method,
			confidence=excluded.confidence, updated_at=excluded.updated_at`,
		recipeID, n.Calories, n.Protein, n.Fat, n.SaturatedFat, n.Carbs, n.Sugars, n.Fiber, n.Sodium,
		string(record.Method), string(record.Confidence), updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save nutrition: %w", err)
	}

	return nil
}

// GetNutrition loads the stored analysis outcome for a recipe.
func (s *Store) GetNutrition(ctx context.Context, recipeID int64) (store.NutritionRecord, error) {
	var record store.NutritionRecord
	var method, confidence string
	var updatedAt int64

	n := &record.Nutrition
	err := s.db.QueryRowContext(ctx,
		`SELECT calories, protein, fat, saturated_fat, carbs, sugars, fiber, sodium, method, confidence, updated_at
		 FROM recipe_nutrition WHERE recipe_id = ?`,
		recipeID,
	).Scan(&n.Calories, &n.Protein, &n.Fat, &n.SaturatedFat, &n.Carbs, &n.Sugars, &n.Fiber, &n.Sodium,
		&method, &confidence, &updatedAt)
	if err == sql.ErrNoRows {
		return store.NutritionRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.NutritionRecord{}, fmt.Errorf("query nutrition: %w", err)
	}

	record.Method = domain.Method(method)
	record.Confidence = domain.Confidence(confidence)
	record.UpdatedAt = time.Unix(updatedAt, 0)

	return record, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
