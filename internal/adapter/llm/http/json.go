package http

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tppkitchen/backoffice/internal/domain"
)

var (
	// Models sometimes wrap the object in a markdown fence despite being
	// told not to. Strip the fence before scanning for braces.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")
)

// stripMarkdownFence removes a surrounding ```json ... ``` fence if one
// is present, returning the trimmed inner text otherwise unchanged.
func stripMarkdownFence(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the first balanced {...} span in text.
//
// Completions are not guaranteed to contain only the JSON object; models
// add preambles and postambles, and descriptive text can itself contain
// braces. A regex cannot pair nested braces, so this walks the text
// counting depth, skipping brace characters inside JSON strings.
func ExtractJSONObject(text string) (string, error) {
	text = stripMarkdownFence(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in completion")
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in completion")
}

// ParseNutrientSet extracts the first JSON object from a completion and
// validates it against the eight-field nutrient contract. A missing or
// non-numeric field fails the whole parse; there are no partial results.
func ParseNutrientSet(text string) (domain.NutrientSet, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return domain.NutrientSet{}, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return domain.NutrientSet{}, fmt.Errorf("parse nutrition JSON: %w", err)
	}

	var values [domain.NutrientFieldCount]float64
	for i, field := range domain.NutrientFields {
		v, ok := raw[field]
		if !ok {
			return domain.NutrientSet{}, fmt.Errorf("nutrition JSON missing field %q", field)
		}
		f, ok := v.(float64)
		if !ok {
			return domain.NutrientSet{}, fmt.Errorf("nutrition JSON field %q is not numeric", field)
		}
		values[i] = f
	}

	return domain.NutrientSetFromValues(values), nil
}
