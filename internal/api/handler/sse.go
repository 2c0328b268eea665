package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

// Server-Sent Event names
const (
	EventPartial = "partial"
	EventFinal   = "final"
	EventNotice  = "notice"
	EventDone    = "done"
	EventError   = "error"
)

// sseSink streams a turn to the client. Headers go out with the first event
// so errors raised before any output can still use a JSON response.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSESink(w http.ResponseWriter, flusher http.Flusher) *sseSink {
	return &sseSink{w: w, flusher: flusher}
}

func (s *sseSink) Partial(text string) {
	s.send(EventPartial, map[string]string{"text": text})
}

func (s *sseSink) Final(role domain.MessageRole, text string) {
	s.send(EventFinal, map[string]string{"role": string(role), "text": text})
}

func (s *sseSink) Notice(level tutor.NoticeLevel, text string) {
	s.send(EventNotice, map[string]string{"level": string(level), "text": text})
}

func (s *sseSink) send(event string, payload any) {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("failed to encode event")
		return
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		// Client went away; the turn's context is cancelled separately
		return
	}
	s.flusher.Flush()
}

// transcriptSink collects final messages, used to answer replays as JSON
type transcriptSink struct {
	messages []transcriptEntry
}

type transcriptEntry struct {
	Role domain.MessageRole `json:"role"`
	Text string             `json:"text"`
}

func (s *transcriptSink) Partial(string) {}

func (s *transcriptSink) Final(role domain.MessageRole, text string) {
	s.messages = append(s.messages, transcriptEntry{Role: role, Text: text})
}

func (s *transcriptSink) Notice(tutor.NoticeLevel, string) {}
