package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object in model output")

// DecodeJSON unmarshals the first JSON object in a model reply into v. Models
// sometimes wrap JSON in markdown fences or add a sentence around it even in
// JSON mode.
func DecodeJSON(text string, v any) error {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(obj), v)
}

// ExtractJSONObject returns the outermost {...} span of text.
func ExtractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}

	obj := text[start : end+1]
	if !json.Valid([]byte(obj)) {
		return "", ErrNoJSON
	}
	return obj, nil
}
