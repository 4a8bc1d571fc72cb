package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/civilllm/civilllm/internal/chat"
	"github.com/civilllm/civilllm/internal/security"
)

// Request validation limits.
const (
	maxRequestBodyBytes  = 1024 * 1024 // 1MB
	maxQuestionRunes     = 2000
	maxHistoryMessages   = 20
	maxHistoryContentLen = 10000
)

// chatRequest is the POST /api/v1/chat request body.
type chatRequest struct {
	Question string         `json:"question"`
	DomainID string         `json:"domainId"`
	History  []chat.Message `json:"conversationHistory"`
}

// chatResponse is the POST /api/v1/chat response body.
type chatResponse struct {
	Answer    string   `json:"answer"`
	Model     string   `json:"model"`
	LatencyMS int64    `json:"latencyMs"`
	DomainID  string   `json:"domainId"`
	Citations []string `json:"citations"`
}

// chatHandler handles the chat endpoint.
// A nil service means no model is configured; requests get 503.
type chatHandler struct {
	service *chat.Service
	logger  *slog.Logger
}

// send handles POST /api/v1/chat.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusServiceUnavailable, "service_unavailable",
			"AI service is not configured. Please contact support.")
		return
	}

	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	// Sanitize before validating so length limits apply to what the model
	// will actually see.
	req.Question = security.SanitizeTextPreserveFormatting(security.StripHTML(req.Question))

	if details := validateChatRequest(req); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Invalid request",
			Details: details,
		})
		return
	}

	domainID := req.DomainID
	if !chat.DomainKnown(domainID) {
		domainID = chat.DefaultDomainID
	}

	start := time.Now()
	resp, err := h.service.Ask(r.Context(), chat.Request{
		Question: req.Question,
		DomainID: domainID,
		History:  req.History,
	})
	if err != nil {
		requestID, _ := requestIDFromContext(r.Context())
		h.logger.Error("chat request failed",
			"domain", domainID,
			"request_id", requestID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "generation_failed",
			"Failed to get AI response. Please try again.")
		return
	}

	citations := resp.Citations
	if citations == nil {
		citations = []string{}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:    resp.Answer,
		Model:     resp.Model,
		LatencyMS: time.Since(start).Milliseconds(),
		DomainID:  domainID,
		Citations: citations,
	})
}

// validateChatRequest returns one message per violated constraint.
func validateChatRequest(req chatRequest) []string {
	var details []string

	if req.Question == "" {
		details = append(details, "question is required")
	}
	if n := len([]rune(req.Question)); n > maxQuestionRunes {
		details = append(details, fmt.Sprintf("question is too long (max %d characters)", maxQuestionRunes))
	}

	if len(req.History) > maxHistoryMessages {
		details = append(details, fmt.Sprintf("conversation history is too long (max %d messages)", maxHistoryMessages))
	}
	for i, m := range req.History {
		if m.Role != "user" && m.Role != "assistant" {
			details = append(details, fmt.Sprintf("history[%d]: role must be user or assistant", i))
		}
		if len(m.Content) > maxHistoryContentLen {
			details = append(details, fmt.Sprintf("history[%d]: content is too long", i))
		}
	}

	return details
}
