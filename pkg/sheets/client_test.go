package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank webhook url")
	}
}

func TestSend_DeliversWithBearerToken(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithToken("secret-token"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	payload := json.RawMessage(`{"booking_number":1042}`)
	if err := client.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if gotBody["booking_number"] != float64(1042) {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestSend_TreatsRedirectAsDelivered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/result", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Send(context.Background(), json.RawMessage(`{}`)); err != nil {
		t.Fatalf("expected 302 to count as delivered, got %v", err)
	}
}

func TestSend_ReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "script exhausted", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Send(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected delivery error for 500 response")
	}
}

func TestSend_RejectsEmptyPayload(t *testing.T) {
	client, err := NewClient("http://localhost:0/webhook")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Send(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
