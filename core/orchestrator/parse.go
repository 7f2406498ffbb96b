package orchestrator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"sitemate/internal/errors"
)

// BOQDelimiter fences the machine-readable block in a completion
const BOQDelimiter = "|||"

var boqBlock = regexp.MustCompile(`(?s)\|\|\|(.*?)\|\|\|`)

// ExtractBOQ pulls the material → quantity mapping out of a completion.
// Prose around the block is ignored. A missing or malformed block is a
// parsing error.
func ExtractBOQ(text string) (map[string]float64, error) {
	m := boqBlock.FindStringSubmatch(text)
	if m == nil {
		return nil, errors.Parsing("no BOQ block found in response", nil)
	}

	body := strings.TrimSpace(m[1])
	body = strings.TrimPrefix(body, "json")

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, errors.Parsing("malformed BOQ block", err)
	}

	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		if qty, ok := toQuantity(v); ok {
			out[strings.TrimSpace(name)] = qty
		}
	}
	if len(out) == 0 {
		return nil, errors.Parsing("BOQ block has no quantities", nil)
	}
	return out, nil
}

// CleanText returns the narrative part of a completion for display
func CleanText(text string) string {
	if i := strings.Index(text, BOQDelimiter); i >= 0 {
		text = strings.ReplaceAll(text[:i], "### JSON", "")
	}
	return strings.TrimSpace(text)
}

func toQuantity(v interface{}) (float64, bool) {
	switch q := v.(type) {
	case float64:
		return q, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(q), ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
