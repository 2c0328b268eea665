package tutor

import "github.com/Rrens/tutor-chat/internal/domain"

// NoticeLevel grades a status notice shown to the user
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// StreamCursor trails partial replies while a stream is in flight
const StreamCursor = "▌"

// Sink receives everything a display layer renders. Calls arrive in order
// from the goroutine running the turn.
type Sink interface {
	// Partial replaces the in-flight reply with text
	Partial(text string)
	// Final renders a finished message
	Final(role domain.MessageRole, text string)
	// Notice shows a status line
	Notice(level NoticeLevel, text string)
}

// DiscardSink drops everything
type DiscardSink struct{}

func (DiscardSink) Partial(string)                   {}
func (DiscardSink) Final(domain.MessageRole, string) {}
func (DiscardSink) Notice(NoticeLevel, string)       {}
