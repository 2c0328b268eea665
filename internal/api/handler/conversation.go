package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Rrens/tutor-chat/internal/api/response"
	"github.com/Rrens/tutor-chat/internal/export"
	"github.com/Rrens/tutor-chat/internal/service"
)

// ConversationHandler serves the stored conversation history
type ConversationHandler struct {
	chat *service.ChatService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(chat *service.ChatService) *ConversationHandler {
	return &ConversationHandler{chat: chat}
}

// List returns conversations, newest first, or ranked by ?q= when given
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.chat.SearchConversations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, conversations)
}

// Messages returns a conversation's full transcript
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "conversationID")
	if !ok {
		return
	}

	conv, err := h.chat.GetConversation(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	messages, err := h.chat.GetMessages(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"conversation": conv,
		"messages":     messages,
	})
}

// Delete removes a conversation; unknown ids succeed
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "conversationID")
	if !ok {
		return
	}

	if err := h.chat.DeleteConversation(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// Export downloads a transcript in the ?format= rendering
func (h *ConversationHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "conversationID")
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	conv, err := h.chat.GetConversation(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.chat.ExportConversation(r.Context(), id, format, &buf); err != nil {
		response.FromError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(*conv, format)))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
