package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7a89"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// terminalSink prints a session to a terminal. Partial replies show as a
// single progress line that the final, rendered reply replaces.
type terminalSink struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	plain    bool
	pending  bool
}

func newTerminalSink(out io.Writer, plain bool) *terminalSink {
	s := &terminalSink{out: out, plain: plain}
	if !plain {
		// Rendering falls back to plain text when the renderer can't be built
		s.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(88),
		)
	}
	return s
}

func (s *terminalSink) Partial(text string) {
	text = strings.TrimSuffix(text, tutor.StreamCursor)
	s.pending = true
	fmt.Fprint(s.out, "\r\033[K"+s.style(mutedStyle, progressLine(text)))
}

func (s *terminalSink) Final(role domain.MessageRole, text string) {
	s.clearProgress()

	switch role {
	case domain.RoleUser:
		fmt.Fprintf(s.out, "%s %s\n", s.style(userStyle, "You:"), text)
	case domain.RoleAssistant:
		fmt.Fprintln(s.out, s.style(assistantStyle, "Tutor:"))
		fmt.Fprintln(s.out, s.render(text))
	}
}

func (s *terminalSink) Notice(level tutor.NoticeLevel, text string) {
	s.clearProgress()

	style := mutedStyle
	switch level {
	case tutor.NoticeWarning:
		style = warningStyle
	case tutor.NoticeError:
		style = errorStyle
	}
	fmt.Fprintln(s.out, s.style(style, "» "+text))
}

// info prints a line of client chatter, such as command output
func (s *terminalSink) info(format string, args ...any) {
	s.clearProgress()
	fmt.Fprintln(s.out, s.style(mutedStyle, fmt.Sprintf(format, args...)))
}

func (s *terminalSink) clearProgress() {
	if s.pending {
		fmt.Fprint(s.out, "\r\033[K")
		s.pending = false
	}
}

func (s *terminalSink) style(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

func (s *terminalSink) render(text string) string {
	if s.renderer == nil {
		return text
	}
	out, err := s.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// progressLine summarizes a reply in flight as its character count and tail
func progressLine(text string) string {
	const tail = 40

	flat := strings.Join(strings.Fields(text), " ")
	if n := utf8.RuneCountInString(flat); n > tail {
		runes := []rune(flat)
		flat = "…" + string(runes[n-tail:])
	}
	return fmt.Sprintf("replying (%d chars) %s", utf8.RuneCountInString(text), flat)
}
