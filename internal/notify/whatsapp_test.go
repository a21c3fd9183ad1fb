package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhatsAppSender_Send(t *testing.T) {
	var got Message
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL, "tok")
	errSend := sender.Send(context.Background(), Message{
		To:       "919876543210",
		Template: "id_card_issued",
		Params:   map[string]any{"name": "Ravi"},
	})
	if errSend != nil {
		t.Fatalf("send: %v", errSend)
	}
	if got.To != "919876543210" || got.Template != "id_card_issued" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestWhatsAppSender_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL, "")
	if err := sender.Send(context.Background(), Message{To: "1"}); err == nil {
		t.Fatal("expected error for gateway failure")
	}
}

func TestWhatsAppSender_NotConfigured(t *testing.T) {
	sender := NewWhatsAppSender("", "")
	if err := sender.Send(context.Background(), Message{To: "1"}); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
