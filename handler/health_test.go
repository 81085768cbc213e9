package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstgnz/posgate/infra/response"
	"github.com/mstgnz/posgate/provider"
)

func TestCheckHealth(t *testing.T) {
	h := NewHealthHandler(provider.NewPaymentService(), nil)

	w := httptest.NewRecorder()
	h.CheckHealth(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp response.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	if data["status"] != "ok" {
		t.Errorf("health status = %v", data["status"])
	}
	if secretStore, ok := data["secret_store"].(map[string]any); !ok || secretStore["backend"] != "env" {
		t.Errorf("expected env secret store backend, got %v", data["secret_store"])
	}
}
