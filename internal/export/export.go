// Package export renders stored transcripts for download.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Rrens/tutor-chat/internal/domain"
)

// Format selects the rendering
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat maps a user supplied name to a Format, defaulting to text
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// ContentType returns the MIME type of the rendering
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension, without the dot
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

// Filename names the download for a conversation
func Filename(conv domain.Conversation, f Format) string {
	return fmt.Sprintf("conversation_%s.%s", conv.ID, f.Extension())
}

type transcript struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Messages  []turn    `json:"messages" yaml:"messages"`
}

type turn struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Write renders the conversation. Guiding instructions are internal and
// never exported.
func Write(w io.Writer, f Format, conv domain.Conversation, messages []domain.Message) error {
	visible := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != domain.RoleSystem {
			visible = append(visible, m)
		}
	}

	switch f {
	case FormatText, "":
		return writeText(w, visible)
	case FormatMarkdown:
		return writeMarkdown(w, conv, visible)
	case FormatJSON, FormatYAML:
		t := transcript{
			ID:        conv.ID.String(),
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt.UTC(),
			UpdatedAt: conv.UpdatedAt.UTC(),
			Messages:  make([]turn, 0, len(visible)),
		}
		for _, m := range visible {
			t.Messages = append(t.Messages, turn{Role: string(m.Role), Content: m.Content, CreatedAt: m.CreatedAt.UTC()})
		}
		if f == FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format: %s", f)
	}
}

func speaker(role domain.MessageRole) string {
	if role == domain.RoleUser {
		return "User"
	}
	return "Assistant"
}

func writeText(w io.Writer, messages []domain.Message) error {
	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "%s: %s\n", speaker(m.Role), m.Content); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, conv domain.Conversation, messages []domain.Message) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n_%s_\n", conv.Title, conv.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "\n**%s:**\n\n%s\n", speaker(m.Role), m.Content); err != nil {
			return err
		}
	}
	return nil
}
