package nutrition

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/tppkitchen/backoffice/internal/domain"
)

// defaultTitle stands in when the caller supplies no recipe title.
const defaultTitle = "Untitled recipe"

// promptTemplate lays the ground-truth product table ahead of the
// recipe so first-party lab values take precedence over estimation.
// The closing instruction pins the output to a bare JSON object.
const promptTemplate = `You are estimating per-serving nutrition values for a recipe.

## Ground truth: first-party product data
The products below have lab-measured nutrition values. When an ingredient
matches one of these products by name or alias, use these exact values
scaled by the quantity used. Do not estimate a first-party product.

{{range .Products}}- {{.DisplayName}} (also known as: {{join .Aliases ", "}})
  Standard serving: {{grams .ServingSizeGrams}}
  Per serving: {{nutrients .PerServing}}
  Per 100g: {{nutrients .Per100g}}
{{end}}
## Recipe
Title: {{.Title}}
Servings: {{.Servings}}
Ingredients:
{{range .Ingredients}}- {{.}}
{{end}}
## Rules
1. Sum nutrition across ALL ingredients, then divide the totals by {{.Servings}} to get per-serving values.
2. Account for fat from cooking media (oil, butter) used to prepare the recipe.
3. When uncertain, estimate conservatively rather than rounding down.

Respond with ONLY a JSON object in exactly this shape and nothing else:
{"calories": 0, "protein": 0.0, "fat": 0.0, "saturated_fat": 0.0, "carbs": 0.0, "sugars": 0.0, "fiber": 0.0, "sodium": 0}
Round calories and sodium to whole numbers and every other field to one decimal place. Calories are kcal, sodium is mg, all other values are grams.`

var promptTmpl = template.Must(template.New("nutrition").Funcs(template.FuncMap{
	"join": strings.Join,
	"grams": func(g float64) string {
		return fmt.Sprintf("%gg", g)
	},
	"nutrients": formatNutrients,
}).Parse(promptTemplate))

// promptData holds all data available to the template.
type promptData struct {
	Title       string
	Servings    int
	Ingredients []string
	Products    []domain.ReferenceProduct
}

// BuildPrompt composes the analysis request sent to both providers. The
// ingredient lines must already be filtered to renderable entries. Pure
// function of its inputs plus the static reference table.
func BuildPrompt(title string, servings int, lines []domain.IngredientLine) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}
	if servings < 1 {
		servings = 1
	}

	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		rendered = append(rendered, l.Render())
	}

	data := promptData{
		Title:       title,
		Servings:    servings,
		Ingredients: rendered,
		Products:    domain.ReferenceTable(),
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render nutrition prompt: %w", err)
	}

	return buf.String(), nil
}

// formatNutrients renders a NutrientSet as a compact one-line summary
// for the ground-truth block.
func formatNutrients(n domain.NutrientSet) string {
	return fmt.Sprintf("%g kcal, %gg protein, %gg fat (%gg saturated), %gg carbs (%gg sugars), %gg fiber, %gmg sodium",
		n.Calories, n.Protein, n.Fat, n.SaturatedFat, n.Carbs, n.Sugars, n.Fiber, n.Sodium)
}
