package nutrition_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tppkitchen/backoffice/internal/domain"
	"github.com/tppkitchen/backoffice/internal/usecase/nutrition"
)

func TestBuildPrompt_ContainsRecipe(t *testing.T) {
	lines := []domain.IngredientLine{
		{Amount: "2", Unit: "cups", Item: "pancake mix", Notes: "TPP Buttermilk"},
		{Amount: "1", Unit: "cup", Item: "milk"},
	}

	prompt, err := nutrition.BuildPrompt("Sunday Pancakes", 4, lines)

	require.NoError(t, err)
	assert.Contains(t, prompt, "Title: Sunday Pancakes")
	assert.Contains(t, prompt, "Servings: 4")
	assert.Contains(t, prompt, "- 2 cups pancake mix (TPP Buttermilk)")
	assert.Contains(t, prompt, "- 1 cup milk")
}

func TestBuildPrompt_ContainsGroundTruthTable(t *testing.T) {
	prompt, err := nutrition.BuildPrompt("Test", 1, []domain.IngredientLine{{Item: "flour"}})

	require.NoError(t, err)
	for _, product := range domain.ReferenceTable() {
		assert.Contains(t, prompt, product.DisplayName)
		for _, alias := range product.Aliases {
			assert.Contains(t, prompt, alias)
		}
	}
}

func TestBuildPrompt_RequestsBareJSONObject(t *testing.T) {
	prompt, err := nutrition.BuildPrompt("Test", 2, []domain.IngredientLine{{Item: "oats"}})

	require.NoError(t, err)
	assert.Contains(t, prompt, "Respond with ONLY a JSON object")
	for _, field := range domain.NutrientFields {
		assert.Contains(t, prompt, `"`+field+`"`)
	}
}

func TestBuildPrompt_DefaultsTitleAndServings(t *testing.T) {
	prompt, err := nutrition.BuildPrompt("   ", 0, []domain.IngredientLine{{Item: "rice"}})

	require.NoError(t, err)
	assert.Contains(t, prompt, "Title: Untitled recipe")
	assert.Contains(t, prompt, "Servings: 1")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	lines := []domain.IngredientLine{
		{Amount: "100", Unit: "g", Item: "granola"},
		{Amount: "200", Unit: "ml", Item: "yogurt"},
	}

	first, err := nutrition.BuildPrompt("Parfait", 2, lines)
	require.NoError(t, err)
	second, err := nutrition.BuildPrompt("Parfait", 2, lines)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildPrompt_PreservesIngredientOrder(t *testing.T) {
	lines := []domain.IngredientLine{
		{Item: "first"},
		{Item: "second"},
		{Item: "third"},
	}

	prompt, err := nutrition.BuildPrompt("Ordered", 1, lines)

	require.NoError(t, err)
	assert.Less(t, strings.Index(prompt, "- first"), strings.Index(prompt, "- second"))
	assert.Less(t, strings.Index(prompt, "- second"), strings.Index(prompt, "- third"))
}
