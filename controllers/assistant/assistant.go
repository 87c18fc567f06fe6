package assistant

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"fintrek-backend/controllers/respond"
	"fintrek-backend/services"
)

const maxMessageLength = 2000

// Asker answers a learner's question.
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

type Handler struct {
	Assistant Asker
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	message := strings.TrimSpace(req.Message)
	var v respond.Validator
	v.Check(message != "" && len(message) <= maxMessageLength, "message", "is required and must be at most 2000 characters")
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}
	if h.Assistant == nil {
		respond.Error(w, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	}

	reply, err := h.Assistant.Ask(r.Context(), message)
	switch {
	case errors.Is(err, services.ErrAssistantDisabled):
		respond.Error(w, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	case err != nil:
		log.Printf("Assistant error: %v", err)
		respond.Error(w, http.StatusBadGateway, "Error fetching response")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"reply": reply})
}
