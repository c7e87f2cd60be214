package nutrition

import (
	"math"

	"github.com/tppkitchen/backoffice/internal/domain"
)

// Thresholds are the relative cross-model disagreement cutoffs for the
// confidence tiers. They are policy constants, not derived from any
// principle, so they stay configurable.
type Thresholds struct {
	High   float64 // max deviation strictly below this is high confidence
	Medium float64 // below this (and at or above High) is medium
}

// DefaultThresholds returns the stock 15%/30% tier cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.15, Medium: 0.30}
}

// Reconcile combines the two adapter outcomes into one estimate plus a
// confidence signal. A nil set denotes that adapter's failure, with the
// cause in the matching error.
//
// Both nil fails with AllProvidersFailedError. Exactly one result is
// returned unchanged at medium confidence: a single unconfirmed source
// is neither fully trusted nor untrusted. Two results are averaged
// field-wise and classified by their worst-agreeing field, since one
// grossly wrong macro makes the whole estimate suspect.
func Reconcile(claude, gemini *domain.NutrientSet, claudeErr, geminiErr error, t Thresholds) (domain.AnalysisResult, error) {
	switch {
	case claude == nil && gemini == nil:
		return domain.AnalysisResult{}, &AllProvidersFailedError{
			ClaudeErr: errMessage(claudeErr),
			GeminiErr: errMessage(geminiErr),
		}

	case gemini == nil:
		return domain.AnalysisResult{
			Nutrition:   claude.Round(),
			Method:      domain.MethodClaudeOnly,
			Confidence:  domain.ConfidenceMedium,
			Claude:      domain.StatusOK,
			Gemini:      domain.StatusFailed,
			GeminiError: errMessage(geminiErr),
		}, nil

	case claude == nil:
		return domain.AnalysisResult{
			Nutrition:   gemini.Round(),
			Method:      domain.MethodGeminiOnly,
			Confidence:  domain.ConfidenceMedium,
			Claude:      domain.StatusFailed,
			Gemini:      domain.StatusOK,
			ClaudeError: errMessage(claudeErr),
		}, nil
	}

	a := claude.Values()
	b := gemini.Values()

	var avg [domain.NutrientFieldCount]float64
	maxDeviation := 0.0

	for i := range avg {
		avg[i] = (a[i] + b[i]) / 2

		// Fields averaging zero are excluded: the ratio is undefined and
		// must not crash or drag down the classification.
		if avg[i] == 0 {
			continue
		}
		deviation := math.Abs(a[i]-b[i]) / avg[i]
		if deviation > maxDeviation {
			maxDeviation = deviation
		}
	}

	return domain.AnalysisResult{
		Nutrition:  domain.NutrientSetFromValues(avg).Round(),
		Method:     domain.MethodDualAverage,
		Confidence: classify(maxDeviation, t),
		Claude:     domain.StatusOK,
		Gemini:     domain.StatusOK,
	}, nil
}

// classify maps the maximum relative deviation to a confidence tier.
// The high band is open at its upper bound, the medium band is
// inclusive-exclusive.
func classify(maxDeviation float64, t Thresholds) domain.Confidence {
	switch {
	case maxDeviation < t.High:
		return domain.ConfidenceHigh
	case maxDeviation < t.Medium:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
