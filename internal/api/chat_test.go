package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/chat"
	"github.com/fiine-pro/support-chat/internal/domain"
)

type fakeOrchestrator struct {
	req  chat.TurnRequest
	resp *chat.TurnResponse
	err  error
}

func (f *fakeOrchestrator) HandleTurn(_ context.Context, req chat.TurnRequest) (*chat.TurnResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func chatRouter(orc TurnHandler) *chi.Mux {
	r := chi.NewRouter()
	NewChatHandler(orc).RegisterRoutes(r)
	return r
}

func TestChatEndpoint(t *testing.T) {
	orc := &fakeOrchestrator{resp: &chat.TurnResponse{
		ConversationID: "abc",
		CurrentAgent:   "Triage Agent",
		Messages:       []chat.AgentMessage{{Content: "xin chào", Reply: "xin chào", Agent: "Triage Agent"}},
		Events:         []domain.TurnEvent{},
		Guardrails:     []domain.GuardrailCheck{},
		Reply:          "xin chào",
		Metadata:       map[string]any{},
	}}

	body := `{"message": "hi", "user_id": "u1", "conversation_id": " abc "}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	chatRouter(orc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if orc.req.ConversationID != "abc" {
		t.Errorf("Expected trimmed conversation id, got %q", orc.req.ConversationID)
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["reply"] != "xin chào" || got["current_agent"] != "Triage Agent" {
		t.Errorf("Unexpected response %v", got)
	}
}

func TestChatEndpointRejectsBadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	chatRouter(&fakeOrchestrator{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestChatEndpointSurfacesTurnFailure(t *testing.T) {
	orc := &fakeOrchestrator{err: errors.New("model unavailable")}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "hi"}`))
	w := httptest.NewRecorder()
	chatRouter(orc).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}
