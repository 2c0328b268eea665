package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Rrens/tutor-chat/internal/api/response"
	"github.com/Rrens/tutor-chat/internal/service"
)

var allowedReferenceExts = map[string]bool{".txt": true, ".md": true, ".markdown": true}

// ReferenceHandler manages the document that grounds framework drafting
type ReferenceHandler struct {
	chat      *service.ChatService
	maxUpload int64
}

// NewReferenceHandler creates a new reference document handler
func NewReferenceHandler(chat *service.ChatService, maxUpload int64) *ReferenceHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &ReferenceHandler{chat: chat, maxUpload: maxUpload}
}

// Get returns the current reference document
func (h *ReferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	content, err := h.chat.GetReferenceDocument(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"content": content,
		"bytes":   len(content),
	})
}

// Put replaces the reference document with an uploaded text file
func (h *ReferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		response.BadRequest(w, "invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedReferenceExts[ext] {
		response.BadRequest(w, "invalid file type. Allowed: .txt, .md, .markdown")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read upload")
		return
	}
	if !utf8.Valid(data) {
		response.BadRequest(w, "reference document must be UTF-8 text")
		return
	}

	if err := h.chat.SaveReferenceDocument(r.Context(), string(data)); err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"original_name": header.Filename,
		"bytes":         len(data),
	})
}
