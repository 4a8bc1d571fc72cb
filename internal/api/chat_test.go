package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/genkit"

	"github.com/civilllm/civilllm/internal/chat"
	"github.com/civilllm/civilllm/internal/log"
	"github.com/civilllm/civilllm/internal/rag"
)

// newUnconfiguredHandler has no chat service, as when OPENAI_API_KEY is unset.
func newUnconfiguredHandler() *chatHandler {
	return &chatHandler{service: nil, logger: log.NewNop()}
}

// newOfflineHandler has a real service whose model is not registered, so
// every generation attempt fails.
func newOfflineHandler(t *testing.T) *chatHandler {
	t.Helper()

	store := rag.NewStore(t.TempDir(), &rag.StaticEmbedder{Vector: []float64{1, 0}}, log.NewNop())
	retriever := rag.NewRetriever(store, rag.DefaultMinSimilarity, log.NewNop())

	svc, err := chat.New(chat.Config{
		Genkit:    genkit.Init(context.Background()),
		Retriever: retriever,
		Logger:    log.NewNop(),
		ModelName: "openai/gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("chat.New() error = %v", err)
	}
	return &chatHandler{service: svc, logger: log.NewNop()}
}

func postChat(t *testing.T, h *chatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.send(w, r)
	return w
}

func TestChatHandler_ServiceUnavailable(t *testing.T) {
	w := postChat(t, newUnconfiguredHandler(), `{"question":"What is M25 concrete?"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "service_unavailable" {
		t.Errorf("body.Error = %q", body.Error)
	}
}

func TestChatHandler_InvalidBody(t *testing.T) {
	h := newOfflineHandler(t)

	for _, body := range []string{"", "{not json", `"just a string"`} {
		if w := postChat(t, h, body); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestChatHandler_Validation(t *testing.T) {
	h := newOfflineHandler(t)

	longQuestion := strings.Repeat("q", maxQuestionRunes+1)
	longHistory := `[` + strings.Repeat(`{"role":"user","content":"hi"},`, maxHistoryMessages) + `{"role":"user","content":"hi"}]`

	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "missing question",
			body:       `{"domainId":"rcc"}`,
			wantDetail: "question is required",
		},
		{
			name:       "html-only question",
			body:       `{"question":"<script>alert(1)</script>"}`,
			wantDetail: "question is required",
		},
		{
			name:       "question too long",
			body:       `{"question":"` + longQuestion + `"}`,
			wantDetail: "question is too long",
		},
		{
			name:       "history too long",
			body:       `{"question":"ok?","conversationHistory":` + longHistory + `}`,
			wantDetail: "conversation history is too long",
		},
		{
			name:       "bad history role",
			body:       `{"question":"ok?","conversationHistory":[{"role":"system","content":"x"}]}`,
			wantDetail: "role must be user or assistant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postChat(t, h, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}

			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error != "validation_failed" {
				t.Errorf("body.Error = %q, want validation_failed", body.Error)
			}
			found := false
			for _, d := range body.Details {
				if strings.Contains(d, tt.wantDetail) {
					found = true
				}
			}
			if !found {
				t.Errorf("details %v missing %q", body.Details, tt.wantDetail)
			}
		})
	}
}

func TestChatHandler_GenerationFailure(t *testing.T) {
	// No model is registered in the offline registry, so the model call
	// fails and maps to a 500.
	h := newOfflineHandler(t)

	w := postChat(t, h, `{"question":"What is the minimum curing period?","domainId":"rcc"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "generation_failed" {
		t.Errorf("body.Error = %q, want generation_failed", body.Error)
	}
}

func TestValidateChatRequest_OK(t *testing.T) {
	req := chatRequest{
		Question: "What is the minimum grade of concrete for RCC?",
		DomainID: "rcc",
		History: []chat.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	}
	if details := validateChatRequest(req); len(details) != 0 {
		t.Errorf("validateChatRequest() = %v, want none", details)
	}
}

func TestChatResponse_LatencyField(t *testing.T) {
	data, err := json.Marshal(chatResponse{Answer: "a", Model: "m", LatencyMS: 12, DomainID: "site", Citations: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"latencyMs"`, `"domainId"`, `"citations"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("response JSON missing %s: %s", key, data)
		}
	}
}
