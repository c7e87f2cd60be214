package http_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/domain"
)

const completeObject = `{"calories": 412, "protein": 12.3, "fat": 18.1, "saturated_fat": 2.4, "carbs": 45.6, "sugars": 11.2, "fiber": 3.9, "sodium": 380}`

func TestExtractJSONObject(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"calories": 100}`,
			expected: `{"calories": 100}`,
		},
		{
			name:     "preamble and postamble",
			input:    "Here is the nutrition estimate:\n{\"calories\": 100}\nLet me know if you need anything else.",
			expected: `{"calories": 100}`,
		},
		{
			name:     "markdown json fence",
			input:    "```json\n{\"calories\": 100}\n```",
			expected: `{"calories": 100}`,
		},
		{
			name:     "markdown fence without language",
			input:    "```\n{\"calories\": 100}\n```",
			expected: `{"calories": 100}`,
		},
		{
			name:     "nested object",
			input:    `result: {"outer": {"inner": 1}, "calories": 100} done`,
			expected: `{"outer": {"inner": 1}, "calories": 100}`,
		},
		{
			name:     "braces inside string values",
			input:    `{"note": "uses {butter} liberally", "calories": 100}`,
			expected: `{"note": "uses {butter} liberally", "calories": 100}`,
		},
		{
			name:     "escaped quote inside string",
			input:    `{"note": "say \"cheese\" {", "calories": 100}`,
			expected: `{"note": "say \"cheese\" {", "calories": 100}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj, err := llmhttp.ExtractJSONObject(tc.input)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, obj)
		})
	}
}

func TestExtractJSONObject_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "no object at all", input: "I cannot provide nutrition estimates."},
		{name: "empty input", input: ""},
		{name: "unbalanced braces", input: `{"calories": 100`},
		{name: "open brace inside unterminated string", input: `{"note": "{`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := llmhttp.ExtractJSONObject(tc.input)

			assert.Error(t, err)
		})
	}
}

func TestParseNutrientSet(t *testing.T) {
	set, err := llmhttp.ParseNutrientSet("The estimate:\n" + completeObject)

	require.NoError(t, err)
	assert.Equal(t, domain.NutrientSet{
		Calories:     412,
		Protein:      12.3,
		Fat:          18.1,
		SaturatedFat: 2.4,
		Carbs:        45.6,
		Sugars:       11.2,
		Fiber:        3.9,
		Sodium:       380,
	}, set)
}

func TestParseNutrientSet_IntegersAccepted(t *testing.T) {
	set, err := llmhttp.ParseNutrientSet(`{"calories": 400, "protein": 20, "fat": 10, "saturated_fat": 4, "carbs": 50, "sugars": 10, "fiber": 5, "sodium": 300}`)

	require.NoError(t, err)
	assert.Equal(t, 20.0, set.Protein)
}

func TestParseNutrientSet_ExtraFieldsIgnored(t *testing.T) {
	set, err := llmhttp.ParseNutrientSet(`{"calories": 400, "protein": 20, "fat": 10, "saturated_fat": 4, "carbs": 50, "sugars": 10, "fiber": 5, "sodium": 300, "cholesterol": 30}`)

	require.NoError(t, err)
	assert.Equal(t, 400.0, set.Calories)
}

func TestParseNutrientSet_MissingFieldNamed(t *testing.T) {
	_, err := llmhttp.ParseNutrientSet(`{"calories": 400, "protein": 20, "fat": 10, "saturated_fat": 4, "carbs": 50, "sugars": 10, "fiber": 5}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"sodium"`)
}

func TestParseNutrientSet_NonNumericFieldNamed(t *testing.T) {
	_, err := llmhttp.ParseNutrientSet(`{"calories": 400, "protein": "20g", "fat": 10, "saturated_fat": 4, "carbs": 50, "sugars": 10, "fiber": 5, "sodium": 300}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"protein"`)
}

func TestParseNutrientSet_NullFieldRejected(t *testing.T) {
	_, err := llmhttp.ParseNutrientSet(`{"calories": 400, "protein": null, "fat": 10, "saturated_fat": 4, "carbs": 50, "sugars": 10, "fiber": 5, "sodium": 300}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"protein"`)
}

func TestParseNutrientSet_MalformedJSON(t *testing.T) {
	_, err := llmhttp.ParseNutrientSet(`{"calories": 400,}`)

	assert.Error(t, err)
}
