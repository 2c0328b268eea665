package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Rrens/tutor-chat/internal/domain"
)

func fixture() (domain.Conversation, []domain.Message) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := domain.Conversation{ID: uuid.New(), Title: "Explain entropy", CreatedAt: now, UpdatedAt: now}
	return conv, []domain.Message{
		{Role: domain.RoleSystem, Content: "guiding instruction", CreatedAt: now},
		{Role: domain.RoleUser, Content: "Explain entropy", CreatedAt: now},
		{Role: domain.RoleAssistant, Content: "Entropy measures disorder.", CreatedAt: now},
	}
}

func TestWriteText(t *testing.T) {
	conv, messages := fixture()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, conv, messages))
	assert.Equal(t, "User: Explain entropy\nAssistant: Entropy measures disorder.\n", buf.String())
}

func TestWriteMarkdown(t *testing.T) {
	conv, messages := fixture()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, conv, messages))
	assert.Contains(t, buf.String(), "# Explain entropy")
	assert.Contains(t, buf.String(), "**Assistant:**\n\nEntropy measures disorder.")
	assert.NotContains(t, buf.String(), "guiding instruction")
}

func TestWriteStructured(t *testing.T) {
	conv, messages := fixture()

	var js bytes.Buffer
	require.NoError(t, Write(&js, FormatJSON, conv, messages))
	var fromJSON transcript
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	assert.Equal(t, conv.ID.String(), fromJSON.ID)
	require.Len(t, fromJSON.Messages, 2)
	assert.Equal(t, "user", fromJSON.Messages[0].Role)

	var ym bytes.Buffer
	require.NoError(t, Write(&ym, FormatYAML, conv, messages))
	var fromYAML transcript
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, "Explain entropy", fromYAML.Title)
	require.Len(t, fromYAML.Messages, 2)
	assert.Equal(t, "assistant", fromYAML.Messages[1].Role)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatText,
		"TXT":      FormatText,
		"md":       FormatMarkdown,
		"json":     FormatJSON,
		" yml ":    FormatYAML,
		"markdown": FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "md", FormatMarkdown.Extension())
}
