package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/answer"
)

// Answerer is the slice of the answering service the handler needs.
type Answerer interface {
	Answer(ctx context.Context, question string) answer.Response
}

// AskRequest is the request body for POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskHandler serves natural-language questions over HTTP.
type AskHandler struct {
	service Answerer
	logger  *zap.Logger
}

func NewAskHandler(service Answerer, logger *zap.Logger) *AskHandler {
	return &AskHandler{service: service, logger: logger}
}

// ServeHTTP handles POST /api/ask. Compilation and execution failures
// are reported inside the response body with status 200; only
// transport-level problems produce a non-200 status.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		ErrorResponse(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	resp := h.service.Answer(r.Context(), req.Question)
	WriteJSON(w, http.StatusOK, resp, h.logger)
}
