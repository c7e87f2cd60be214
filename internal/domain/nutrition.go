package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Method identifies how a nutrition estimate was produced.
type Method string

const (
	MethodClaudeOnly  Method = "claude_only"
	MethodGeminiOnly  Method = "gemini_only"
	MethodDualAverage Method = "dual_model_average"
)

// Confidence is the trust tier assigned to a nutrition estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ProviderStatus reports the outcome of a single provider call.
type ProviderStatus string

const (
	StatusOK     ProviderStatus = "ok"
	StatusFailed ProviderStatus = "failed"
)

// NutrientFieldCount is the number of tracked nutrients.
const NutrientFieldCount = 8

// NutrientFields lists the canonical JSON field names, in the order used
// by Values and NutrientSetFromValues.
var NutrientFields = [NutrientFieldCount]string{
	"calories",
	"protein",
	"fat",
	"saturated_fat",
	"carbs",
	"sugars",
	"fiber",
	"sodium",
}

// nutrientPlaces holds the decimal places for each field, in canonical
// order. Calories and sodium are reported as whole numbers, everything
// else to one decimal.
var nutrientPlaces = [NutrientFieldCount]int32{0, 1, 1, 1, 1, 1, 1, 0}

// NutrientSet is a per-serving nutrition profile. Calories are kcal,
// sodium is mg, all other fields are grams.
type NutrientSet struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"fat"`
	SaturatedFat float64 `json:"saturated_fat"`
	Carbs        float64 `json:"carbs"`
	Sugars       float64 `json:"sugars"`
	Fiber        float64 `json:"fiber"`
	Sodium       float64 `json:"sodium"`
}

// Values returns the nutrient values in canonical field order.
func (n NutrientSet) Values() [NutrientFieldCount]float64 {
	return [NutrientFieldCount]float64{
		n.Calories,
		n.Protein,
		n.Fat,
		n.SaturatedFat,
		n.Carbs,
		n.Sugars,
		n.Fiber,
		n.Sodium,
	}
}

// NutrientSetFromValues builds a NutrientSet from values in canonical
// field order.
func NutrientSetFromValues(v [NutrientFieldCount]float64) NutrientSet {
	return NutrientSet{
		Calories:     v[0],
		Protein:      v[1],
		Fat:          v[2],
		SaturatedFat: v[3],
		Carbs:        v[4],
		Sugars:       v[5],
		Fiber:        v[6],
		Sodium:       v[7],
	}
}

// Round applies the reporting precision contract: whole numbers for
// calories and sodium, one decimal place for the remaining fields.
func (n NutrientSet) Round() NutrientSet {
	values := n.Values()
	for i, v := range values {
		values[i] = roundTo(v, nutrientPlaces[i])
	}
	return NutrientSetFromValues(values)
}

// roundTo rounds half away from zero at the given number of decimal
// places. decimal avoids the float drift of math.Round(v*10)/10.
func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// IngredientLine is one free-text ingredient entry. No unit
// normalization is performed; the fields are rendered verbatim.
type IngredientLine struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Item   string `json:"item"`
	Notes  string `json:"notes,omitempty"`
}

// Renderable reports whether the line carries an actual ingredient.
func (l IngredientLine) Renderable() bool {
	return strings.TrimSpace(l.Item) != ""
}

// Render formats the line as "<amount> <unit> <item> (<notes>)", with
// the parenthetical omitted when there are no notes.
func (l IngredientLine) Render() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Amount, l.Unit, l.Item} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	line := strings.Join(parts, " ")
	if notes := strings.TrimSpace(l.Notes); notes != "" {
		line = fmt.Sprintf("%s (%s)", line, notes)
	}
	return line
}

// FilterIngredients drops lines with a blank item. The engine refuses
// requests where nothing survives the filter.
func FilterIngredients(lines []IngredientLine) []IngredientLine {
	filtered := make([]IngredientLine, 0, len(lines))
	for _, l := range lines {
		if l.Renderable() {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// AnalysisRequest is one nutrition estimation request. It is built per
// call and never persisted.
type AnalysisRequest struct {
	Title       string
	Servings    int
	Ingredients []IngredientLine
}

// AnalysisResult is the reconciled output of the estimation engine.
type AnalysisResult struct {
	Nutrition  NutrientSet
	Method     Method
	Confidence Confidence

	Claude      ProviderStatus
	Gemini      ProviderStatus
	ClaudeError string
	GeminiError string
}
