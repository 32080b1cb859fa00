// Package detect discovers OpenAI-compatible servers by probing candidate
// base URLs for a working /models endpoint.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultModelsPath = "/models"

// Outcome is the classified result of one probe against one candidate.
// Probe never returns an error alongside: failure is a normal Outcome with
// OK=false and Err describing why.
type Outcome struct {
	Candidate string
	OK        bool
	Payload   map[string]any
	Err       error
}

// ProbeFunc checks a single candidate base URL. Implementations must honor
// ctx and must classify every failure into the Outcome rather than panic.
type ProbeFunc func(ctx context.Context, baseURL string) Outcome

// Prober issues bounded-time GET requests against <base>/models and
// classifies the response. The zero value is not usable; construct with
// NewProber.
type Prober struct {
	client  *http.Client
	path    string
	token   string
	timeout time.Duration
}

// NewProber builds a Prober. client may be nil (http.DefaultClient is used),
// path defaults to "/models", token (when non-empty) is sent as a bearer
// header. timeout bounds each individual probe call.
func NewProber(client *http.Client, path, token string, timeout time.Duration) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(path) == "" {
		path = defaultModelsPath
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{client: client, path: path, token: token, timeout: timeout}
}

// Probe fetches <baseURL>/models. Success is a 2xx response whose body is a
// JSON object containing a "data" key. Every other condition (network error,
// timeout, non-2xx status, malformed body) is a failure Outcome.
func (p *Prober) Probe(ctx context.Context, baseURL string) Outcome {
	out := Outcome{Candidate: baseURL}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + p.path
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		out.Err = err
		return out
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		out.Err = err
		return out
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		out.Err = fmt.Errorf("probe %s: unexpected status %d", url, resp.StatusCode)
		return out
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		out.Err = fmt.Errorf("probe %s: read body: %w", url, err)
		return out
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		out.Err = fmt.Errorf("probe %s: malformed body: %w", url, err)
		return out
	}
	if _, ok := payload["data"]; !ok {
		out.Err = fmt.Errorf("probe %s: response has no data key", url)
		return out
	}

	out.OK = true
	out.Payload = payload
	return out
}
