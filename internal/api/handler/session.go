package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/api/middleware"
	"github.com/Rrens/tutor-chat/internal/api/response"
	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/notation"
	"github.com/Rrens/tutor-chat/internal/security"
	"github.com/Rrens/tutor-chat/internal/service"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

// SessionHandler drives interactive tutor sessions
type SessionHandler struct {
	chat      *service.ChatService
	registry  *service.SessionRegistry
	tokens    *security.TokenManager
	llmRouter *llm.Router
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chat *service.ChatService, registry *service.SessionRegistry, tokens *security.TokenManager, llmRouter *llm.Router) *SessionHandler {
	return &SessionHandler{chat: chat, registry: registry, tokens: tokens, llmRouter: llmRouter}
}

type createSessionRequest struct {
	Provider string `json:"provider" validate:"omitempty,max=64"`
	Model    string `json:"model" validate:"omitempty,max=128"`
	APIKey   string `json:"api_key" validate:"omitempty,max=512"`
}

type createSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model,omitempty"`
}

// Create validates the provider credentials and opens an empty session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	settings := tutor.LLMSettings{
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
	}
	if settings.Provider == "" {
		settings.Provider = h.llmRouter.DefaultProvider()
	}

	if err := h.chat.ValidateProvider(r.Context(), settings); err != nil {
		log.Info().Err(err).Str("provider", settings.Provider).Msg("provider validation failed")
		response.BadRequest(w, "provider validation failed: check the provider name and API key")
		return
	}

	sess := h.registry.Create(settings)
	token, expiresAt, err := h.tokens.Issue(security.SessionGrant{
		SessionID: sess.ID,
		Provider:  settings.Provider,
		Model:     settings.Model,
		APIKey:    settings.APIKey,
	})
	if err != nil {
		h.registry.Delete(sess.ID)
		response.FromError(w, err)
		return
	}

	response.Created(w, createSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		Provider:  settings.Provider,
		Model:     settings.Model,
	})
}

type sessionView struct {
	ID             uuid.UUID         `json:"id"`
	Phase          tutor.Phase       `json:"phase"`
	Mode           tutor.Mode        `json:"mode,omitempty"`
	ConversationID *uuid.UUID        `json:"conversation_id,omitempty"`
	Provider       string            `json:"provider"`
	Model          string            `json:"model,omitempty"`
	Messages       []transcriptEntry `json:"messages"`
}

func viewOf(sess *tutor.Session) sessionView {
	view := sessionView{
		ID:             sess.ID,
		Phase:          sess.Phase,
		Mode:           sess.Mode,
		ConversationID: sess.ConversationID,
		Provider:       sess.LLM.Provider,
		Model:          sess.LLM.Model,
		Messages:       []transcriptEntry{},
	}
	for _, m := range sess.DisplayMessages() {
		text := m.Content
		if m.Role == domain.RoleAssistant {
			text = notation.Rewrite(text)
		}
		view.Messages = append(view.Messages, transcriptEntry{Role: m.Role, Text: text})
	}
	return view
}

// Get returns a snapshot of the caller's session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetSessionID(r.Context())

	var view sessionView
	err := h.registry.With(id, func(sess *tutor.Session) error {
		view = viewOf(sess)
		return nil
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, view)
}

// Reset starts over with an empty session
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetSessionID(r.Context())

	var view sessionView
	err := h.registry.With(id, func(sess *tutor.Session) error {
		h.chat.Reset(sess)
		view = viewOf(sess)
		return nil
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, view)
}

// Reload loads a stored conversation and returns its history once
func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetSessionID(r.Context())
	conversationID, ok := uuidParam(w, r, "conversationID")
	if !ok {
		return
	}

	var view sessionView
	err := h.registry.With(id, func(sess *tutor.Session) error {
		if err := h.chat.Reload(r.Context(), sess, conversationID); err != nil {
			return err
		}
		sink := &transcriptSink{}
		h.chat.Replay(sess, sink)

		view = viewOf(sess)
		view.Messages = sink.messages
		if view.Messages == nil {
			view.Messages = []transcriptEntry{}
		}
		return nil
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, view)
}

type messageRequest struct {
	Content string `json:"content" validate:"required,max=32000"`
}

// Message runs one turn and streams it as Server-Sent Events
func (h *SessionHandler) Message(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetSessionID(r.Context())

	var req messageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "streaming unsupported")
		return
	}
	sink := newSSESink(w, flusher)

	err := h.registry.With(id, func(sess *tutor.Session) error {
		result, err := h.chat.Submit(r.Context(), sess, req.Content, sink)
		if err != nil {
			return err
		}
		sink.send(EventDone, result)
		return nil
	})
	if err == nil {
		return
	}

	if !sink.started {
		response.FromError(w, err)
		return
	}

	message := "failed to save the conversation"
	if errors.Is(err, service.ErrSessionNotFound) {
		message = "session expired"
	}
	log.Error().Err(err).Str("session_id", id.String()).Msg("turn failed")
	sink.send(EventError, map[string]string{"message": message})
}
