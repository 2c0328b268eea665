package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Label      string  `json:"label" validate:"required,oneof=a b"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string  `json:"reasoning"`
}

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"label": "a"}`,
			expected: `{"label": "a"}`,
		},
		{
			name:     "annotated fence",
			input:    "```json\n{\"label\": \"a\"}\n```",
			expected: `{"label": "a"}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"label\": \"b\"}\n```",
			expected: `{"label": "b"}`,
		},
		{
			name:     "multi-line object",
			input:    "{\n  \"label\": \"a\",\n  \"confidence\": 0.9\n}",
			expected: `{ "label": "a", "confidence": 0.9 }`,
		},
		{
			name:     "surrounding prose",
			input:    "Here you go:\n{\"label\": \"a\"}\nHope that helps.",
			expected: `{"label": "a"}`,
		},
		{
			name:     "fence inside a string value",
			input:    "```json\n{\n  \"analysis_content\": \"Learner knows basics\",\n  \"design_content\": \"Show ```python print(1)``` then practice\"\n}\n```",
			expected: `{ "analysis_content": "Learner knows basics", "design_content": "Show ` + "```python print(1)```" + ` then practice" }`,
		},
		{
			name:     "unfenced reply quoting a fence",
			input:    `{"analysis_content":"a","design_content":"Use ` + "```go fmt.Println()```" + ` as example"}`,
			expected: `{"analysis_content":"a","design_content":"Use ` + "```go fmt.Println()```" + ` as example"}`,
		},
		{
			name:     "whitespace only",
			input:    "   \n  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPayload(tt.input))
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("valid fenced payload", func(t *testing.T) {
		var p testPayload
		err := DecodePayload("```json\n{\"label\": \"b\", \"confidence\": 0.75, \"reasoning\": \"because\"}\n```", &p)
		require.NoError(t, err)
		assert.Equal(t, "b", p.Label)
		assert.InDelta(t, 0.75, p.Confidence, 1e-9)
		assert.Equal(t, "because", p.Reasoning)
	})

	t.Run("code examples survive", func(t *testing.T) {
		var f struct {
			Analysis string `json:"analysis_content" validate:"required"`
			Design   string `json:"design_content" validate:"required"`
		}
		reply := "```json\n{\n  \"analysis_content\": \"Learner knows basics\",\n" +
			"  \"design_content\": \"Show ```python\\nprint(1)\\n``` then practice\"\n}\n```"
		require.NoError(t, DecodePayload(reply, &f))
		assert.Equal(t, "Learner knows basics", f.Analysis)
		assert.Equal(t, "Show ```python\nprint(1)\n``` then practice", f.Design)

		require.NoError(t, DecodePayload(`{"analysis_content":"a","design_content":"Use `+"```go fmt.Println()```"+` as example"}`, &f))
		assert.Equal(t, "Use ```go fmt.Println()``` as example", f.Design)
	})

	t.Run("not json", func(t *testing.T) {
		var p testPayload
		err := DecodePayload("I think this is learning", &p)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("empty", func(t *testing.T) {
		var p testPayload
		assert.ErrorIs(t, DecodePayload("", &p), ErrMalformedPayload)
	})

	t.Run("label outside the allowed set", func(t *testing.T) {
		var p testPayload
		err := DecodePayload(`{"label": "c", "confidence": 0.5}`, &p)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		var p testPayload
		err := DecodePayload(`{"label": "a", "confidence": 1.5}`, &p)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(&testPayload{})
	assert.Contains(t, schema, `"label"`)
	assert.Contains(t, schema, `"confidence"`)
	assert.NotContains(t, schema, "$ref")
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]Message{
		{Role: RoleSystem, Content: "one"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleSystem, Content: "two"},
		{Role: RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "one\n\ntwo", system)
	require.Len(t, rest, 2)
	assert.Equal(t, RoleUser, rest[0].Role)
	assert.Equal(t, RoleAssistant, rest[1].Role)
}

func TestEndWithUserTurn(t *testing.T) {
	assert.Empty(t, EndWithUserTurn(nil))

	endsWithUser := []Message{{Role: RoleUser, Content: "hi"}}
	assert.Equal(t, endsWithUser, EndWithUserTurn(endsWithUser))

	amended := []Message{
		{Role: RoleUser, Content: "too abstract"},
		{Role: RoleAssistant, Content: "ADJUSTED REPLY"},
	}
	got := EndWithUserTurn(amended)
	require.Len(t, got, 3)
	assert.Equal(t, Message{Role: RoleAssistant, Content: "ADJUSTED REPLY"}, got[1])
	assert.Equal(t, Message{Role: RoleUser, Content: ContinuationPrompt}, got[2])
	assert.Len(t, amended, 2)
}
