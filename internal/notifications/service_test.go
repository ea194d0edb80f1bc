package notifications_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"isccd/internal/notifications"
	"isccd/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenWebhookMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := notifications.NewService(cfg)
	if err := svc.Publish(context.Background(), notifications.EventFingerprinted, notifications.Payload{"asset_id": 1}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestWebhookPublishPostsJSON(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(server.URL))
	svc := notifications.NewService(cfg)

	payload := notifications.Payload{
		"asset_id":   int64(42),
		"asset_name": "img.tiff",
		"iscc":       "ISCC:KAD2XGH4AUDGVPKQ",
	}
	if err := svc.Publish(context.Background(), notifications.EventFingerprinted, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if received["event"] != "iscc_generated" {
		t.Fatalf("unexpected event field: %v", received["event"])
	}
	if received["iscc"] != "ISCC:KAD2XGH4AUDGVPKQ" {
		t.Fatalf("payload field lost: %#v", received)
	}
	if _, ok := received["timestamp"]; !ok {
		t.Fatal("expected timestamp in webhook body")
	}
}

func TestWebhookPublishReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(server.URL))
	svc := notifications.NewService(cfg)
	if err := svc.Publish(context.Background(), notifications.EventFingerprinted, nil); err == nil {
		t.Fatal("expected error for 502 response")
	}
}
