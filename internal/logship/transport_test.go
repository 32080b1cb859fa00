package logship

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransportPostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	rec := NewRecord("INFO", "hello")
	rec.Event = "greeting"
	rec.DurationMS = 7

	tr := NewHTTPTransport(srv.URL, "tok", nil)
	if err := tr.Send(context.Background(), rec); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["level"] != "INFO" || got["message"] != "hello" {
		t.Fatalf("payload = %v, missing level/message", got)
	}
	if got["event"] != "greeting" || got["duration_ms"] != float64(7) {
		t.Fatalf("payload = %v, missing optional fields", got)
	}
	if _, present := got["provider"]; present {
		t.Fatal("empty optional field was serialized")
	}
}

func TestHTTPTransportNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, "", nil)
	if err := tr.Send(context.Background(), NewRecord("INFO", "x")); err == nil {
		t.Fatal("Send returned nil for a 502 response")
	}
}

func TestHTTPTransportRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := NewHTTPTransport(srv.URL, "", nil).Send(ctx, NewRecord("INFO", "x")); err == nil {
		t.Fatal("Send returned nil after context deadline")
	}
	if time.Since(start) > time.Second {
		t.Fatal("Send did not honor context deadline")
	}
}
