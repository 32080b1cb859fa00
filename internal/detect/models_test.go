package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func modelsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListModels(t *testing.T) {
	srv := modelsServer(t, `{"data":[{"id":"llama-3"},{"id":"qwen-2.5"},{"object":"model"},{"id":""}]}`)
	probe := NewProber(nil, "", "", time.Second).Probe

	models, err := ListModels(context.Background(), probe, srv.URL)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	want := []string{"llama-3", "qwen-2.5"}
	if len(models) != len(want) {
		t.Fatalf("ListModels = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Fatalf("ListModels[%d] = %q, want %q", i, models[i], want[i])
		}
	}
}

func TestListModelsFetchError(t *testing.T) {
	probe := NewProber(nil, "", "", 200*time.Millisecond).Probe
	if _, err := ListModels(context.Background(), probe, "http://127.0.0.1:1"); err == nil {
		t.Fatal("ListModels returned no error for a dead endpoint")
	}
}

func TestAutoContextWindow(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{
			"top-level field on matching model",
			`{"data":[{"id":"llama-3","context_length":8192},{"id":"other","context_length":2048}]}`,
			8192,
		},
		{
			"nested under settings",
			`{"data":[{"id":"llama-3","settings":{"n_ctx":4096}}]}`,
			4096,
		},
		{
			"meta sub-object",
			`{"data":[{"id":"llama-3","meta":{"max_context_length":32768}}]}`,
			32768,
		},
		{
			"falls back to any model",
			`{"data":[{"id":"other","context_window":16384}]}`,
			16384,
		},
		{
			"unknown",
			`{"data":[{"id":"llama-3"}]}`,
			0,
		},
	}
	probe := NewProber(nil, "", "", time.Second).Probe
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := modelsServer(t, tc.body)
			got := AutoContextWindow(context.Background(), probe, srv.URL, "llama-3")
			if got != tc.want {
				t.Fatalf("AutoContextWindow = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAutoContextWindowFetchFailure(t *testing.T) {
	probe := NewProber(nil, "", "", 200*time.Millisecond).Probe
	if got := AutoContextWindow(context.Background(), probe, "http://127.0.0.1:1", "m"); got != 0 {
		t.Fatalf("AutoContextWindow = %d for unreachable server, want 0", got)
	}
}
