package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedPayload is returned when a structured model reply cannot be
// decoded into the expected shape
var ErrMalformedPayload = errors.New("malformed structured payload")

var (
	openingFence = regexp.MustCompile("^```[a-zA-Z0-9_+-]*[ \\t]*\\r?\\n?")
	closingFence = regexp.MustCompile("\\r?\\n?```$")
	validate     = validator.New()
)

// ExtractPayload strips the code fence wrapping a model reply and collapses
// line breaks. Fences inside the object, such as code examples in a string
// value, are left alone.
func ExtractPayload(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = openingFence.ReplaceAllString(content, "")
		content = closingFence.ReplaceAllString(content, "")
	}

	// Drop prose around the object
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	lines := strings.Split(content, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// DecodePayload extracts the JSON object from content, unmarshals it into v
// and validates the result using its `validate` struct tags
func DecodePayload(content string, v any) error {
	raw := ExtractPayload(content)
	if raw == "" {
		return fmt.Errorf("%w: empty reply", ErrMalformedPayload)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return nil
}
