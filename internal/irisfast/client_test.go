package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendMessagePostsReply(t *testing.T) {
	got := make(chan ReplyRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reply" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-User-Id") != "bot" || r.Header.Get("X-Session-Id") != "" {
			t.Errorf("unexpected headers: %v", r.Header)
		}
		var req ReplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		got <- req
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithHeaderProvider(HeaderSet("bot", "", "")))
	if err := c.SendMessage(context.Background(), "room-1", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	req := <-got
	if req.Type != "text" || req.Room != "room-1" || req.Data != "hello" {
		t.Fatalf("unexpected reply: %+v", req)
	}
}

func TestSendImageIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3))
	err := c.SendImage(context.Background(), "r", "aW1n")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected APIError 503, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("reply should be sent once, got %d calls", calls.Load())
	}
}

func TestPingRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"port":3000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3), WithTimeout(2*time.Second))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestPingStopsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Ping(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || calls.Load() != 1 {
		t.Fatalf("expected single 401, got %v after %d calls", err, calls.Load())
	}
}

func TestMessageUserID(t *testing.T) {
	name := " alice "
	if got := (&Message{Sender: &name}).UserID(); got != "alice" {
		t.Fatalf("sender fallback: %q", got)
	}
	if got := (&Message{Sender: &name, JSON: &MessageJSON{UserID: "42"}}).UserID(); got != "42" {
		t.Fatalf("json id: %q", got)
	}
	var m *Message
	if m.UserID() != "" {
		t.Fatalf("nil message")
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(0) != 100*time.Millisecond || backoffDuration(3) != 400*time.Millisecond || backoffDuration(10) != 3200*time.Millisecond {
		t.Fatalf("unexpected backoff")
	}
}
