package domain

// ReferenceProduct is a first-party product with lab-measured nutrition
// values. The engine never matches ingredients to products itself; the
// table is injected into the prompt and matching is delegated to the
// model via instruction.
type ReferenceProduct struct {
	ID               string
	DisplayName      string
	Aliases          []string
	ServingSizeGrams float64
	PerServing       NutrientSet
	Per100g          NutrientSet
}

// referenceTable is built once at process start and never written
// afterwards, so it is safe to share across concurrent requests.
var referenceTable = []ReferenceProduct{
	{
		ID:               "tpp-buttermilk-mix",
		DisplayName:      "TPP Buttermilk Pancake Mix",
		Aliases:          []string{"buttermilk mix", "tpp buttermilk", "pancake mix"},
		ServingSizeGrams: 53,
		PerServing:       NutrientSet{Calories: 200, Protein: 15.0, Fat: 2.5, SaturatedFat: 0.5, Carbs: 30.0, Sugars: 4.0, Fiber: 2.0, Sodium: 430},
		Per100g:          NutrientSet{Calories: 377, Protein: 28.3, Fat: 4.7, SaturatedFat: 0.9, Carbs: 56.6, Sugars: 7.5, Fiber: 3.8, Sodium: 811},
	},
	{
		ID:               "tpp-chocolate-mix",
		DisplayName:      "TPP Chocolate Pancake Mix",
		Aliases:          []string{"chocolate mix", "tpp chocolate", "chocolate pancake mix"},
		ServingSizeGrams: 55,
		PerServing:       NutrientSet{Calories: 210, Protein: 15.0, Fat: 3.5, SaturatedFat: 1.5, Carbs: 29.0, Sugars: 6.0, Fiber: 3.0, Sodium: 400},
		Per100g:          NutrientSet{Calories: 382, Protein: 27.3, Fat: 6.4, SaturatedFat: 2.7, Carbs: 52.7, Sugars: 10.9, Fiber: 5.5, Sodium: 727},
	},
	{
		ID:               "tpp-vanilla-whey",
		DisplayName:      "TPP Vanilla Whey Protein",
		Aliases:          []string{"vanilla whey", "vanilla protein powder", "tpp vanilla"},
		ServingSizeGrams: 32,
		PerServing:       NutrientSet{Calories: 120, Protein: 24.0, Fat: 1.5, SaturatedFat: 1.0, Carbs: 3.0, Sugars: 2.0, Fiber: 0, Sodium: 55},
		Per100g:          NutrientSet{Calories: 375, Protein: 75.0, Fat: 4.7, SaturatedFat: 3.1, Carbs: 9.4, Sugars: 6.3, Fiber: 0, Sodium: 172},
	},
	{
		ID:               "tpp-maple-syrup",
		DisplayName:      "TPP Zero Sugar Maple Syrup",
		Aliases:          []string{"zero sugar syrup", "sugar free maple syrup", "tpp syrup"},
		ServingSizeGrams: 60,
		PerServing:       NutrientSet{Calories: 15, Protein: 0, Fat: 0, SaturatedFat: 0, Carbs: 13.0, Sugars: 0, Fiber: 6.0, Sodium: 75},
		Per100g:          NutrientSet{Calories: 25, Protein: 0, Fat: 0, SaturatedFat: 0, Carbs: 21.7, Sugars: 0, Fiber: 10.0, Sodium: 125},
	},
	{
		ID:               "tpp-granola-original",
		DisplayName:      "TPP Protein Granola Original",
		Aliases:          []string{"protein granola", "tpp granola", "granola"},
		ServingSizeGrams: 60,
		PerServing:       NutrientSet{Calories: 250, Protein: 13.0, Fat: 8.0, SaturatedFat: 1.0, Carbs: 32.0, Sugars: 7.0, Fiber: 4.0, Sodium: 115},
		Per100g:          NutrientSet{Calories: 417, Protein: 21.7, Fat: 13.3, SaturatedFat: 1.7, Carbs: 53.3, Sugars: 11.7, Fiber: 6.7, Sodium: 192},
	},
}

// ReferenceTable returns the first-party product ground-truth table.
// Callers must treat the returned slice as read-only.
func ReferenceTable() []ReferenceProduct {
	return referenceTable
}
