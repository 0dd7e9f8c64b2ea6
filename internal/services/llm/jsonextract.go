package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object in model output")

// ExtractJSON pulls the JSON payload out of model text. A fence is only
// stripped when it opens the text, and only a closing fence at the very end
// is cut, so backticks inside string values survive. Prose around the
// outermost object is dropped.
func ExtractJSON(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		rest := s[3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			// drop the language tag line
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimPrefix(rest, "json")
		}
		rest = strings.TrimSpace(rest)
		s = strings.TrimSpace(strings.TrimSuffix(rest, "```"))
	}

	if !strings.HasPrefix(s, "{") {
		start := strings.IndexByte(s, '{')
		end := strings.LastIndexByte(s, '}')
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}

// ParseObject extracts and strictly decodes a JSON object from model text.
func ParseObject(text string) (map[string]interface{}, error) {
	payload := ExtractJSON(text)
	if !strings.HasPrefix(payload, "{") {
		return nil, ErrNoJSONObject
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNoJSONObject
	}
	return out, nil
}
