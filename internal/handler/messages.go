// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// MessageHandler handles the contact inbox section of the admin
// dashboard.
type MessageHandler struct {
	renderer *render.Renderer
	messages *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(renderer *render.Renderer, messages *service.MessageService) *MessageHandler {
	return &MessageHandler{
		renderer: renderer,
		messages: messages,
	}
}

// Delete handles POST /admin/messages/{id}/delete.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Message introuvable.")
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "message delete failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Message supprimé.")
}
