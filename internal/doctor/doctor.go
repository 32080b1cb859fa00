// Package doctor runs setup diagnostics: endpoint reachability, model
// listing, a tiny chat echo, config-path writability, and schema validation
// of the rendered config. It reuses the detect probe primitives and adds no
// concurrency of its own. Checks never panic; failures become report rows.
package doctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danshapiro/codexlink/internal/detect"
	"github.com/danshapiro/codexlink/internal/iosafe"
	"github.com/danshapiro/codexlink/internal/state"
)

const (
	statusPass = "pass"
	statusWarn = "warn"
	statusFail = "fail"

	echoPrompt     = "ping"
	defaultTimeout = 3 * time.Second
)

// Check is one row of the diagnostic report.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report is the full doctor run, written next to the config for later
// inspection.
type Report struct {
	GeneratedAt string  `json:"generated_at"`
	BaseURL     string  `json:"base_url,omitempty"`
	Checks      []Check `json:"checks"`
	Summary     Summary `json:"summary"`
}

type Summary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
	switch c.Status {
	case statusPass:
		r.Summary.Pass++
	case statusWarn:
		r.Summary.Warn++
	default:
		r.Summary.Fail++
	}
}

// Failed reports whether any check failed (warns do not fail the run).
func (r *Report) Failed() bool { return r.Summary.Fail > 0 }

// Options configure one doctor run.
type Options struct {
	BaseURL    string // from the command line; empty falls back to state, then detection
	Model      string
	APIKey     string
	Home       string
	Timeout    time.Duration
	Client     *http.Client
	Candidates []string // race candidates for auto-detection
}

// Run executes the full check suite and returns the report.
func Run(ctx context.Context, st state.State, opts Options) *Report {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}

	report := &Report{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}
	token := strings.TrimSpace(opts.APIKey)
	if token == "" {
		token = strings.TrimSpace(st.APIKey)
	}
	if strings.EqualFold(token, "NULLKEY") {
		token = ""
	}
	prober := detect.NewProber(opts.Client, "", token, opts.Timeout)

	baseURL, source := resolveBaseURL(ctx, st, opts, prober.Probe)
	report.BaseURL = baseURL
	if baseURL == "" {
		report.add(Check{
			Name:   "resolve base URL",
			Status: statusFail,
			Detail: "provide --base-url, set it in state, or run a detectable local server",
		})
	} else {
		report.add(Check{Name: "resolve base URL", Status: statusPass, Detail: source + ": " + baseURL})
	}

	var models []string
	if baseURL != "" {
		out := prober.Probe(ctx, baseURL)
		if out.OK {
			report.add(Check{Name: "probe /models", Status: statusPass})
			models, _ = detect.ListModels(ctx, prober.Probe, baseURL)
			if len(models) == 0 {
				report.add(Check{Name: "list models", Status: statusWarn, Detail: "server reports no models"})
			} else {
				report.add(Check{Name: "list models", Status: statusPass, Detail: fmt.Sprintf("%d available", len(models))})
			}
		} else {
			report.add(Check{Name: "probe /models", Status: statusFail, Detail: out.Err.Error()})
			report.add(Check{Name: "list models", Status: statusFail, Detail: "skipped (probe failed)"})
		}
	} else {
		report.add(Check{Name: "probe /models", Status: statusFail, Detail: "skipped (no base URL)"})
		report.add(Check{Name: "list models", Status: statusFail, Detail: "skipped (no base URL)"})
	}

	model := firstNonEmpty(opts.Model, st.Model)
	if model == "" && len(models) > 0 {
		model = models[0]
	}
	if baseURL != "" && model != "" {
		report.add(chatEcho(ctx, opts.Client, baseURL, model, token, opts.Timeout))
	} else {
		report.add(Check{Name: "chat echo", Status: statusWarn, Detail: "skipped (no model available)"})
	}

	if opts.Home != "" {
		if iosafe.Writable(opts.Home) {
			report.add(Check{Name: "config dir writable", Status: statusPass, Detail: opts.Home})
		} else {
			report.add(Check{Name: "config dir writable", Status: statusFail, Detail: opts.Home})
		}
		report.add(validateConfigJSON(iosafe.ConfigJSON(opts.Home)))
	}

	return report
}

func resolveBaseURL(ctx context.Context, st state.State, opts Options, probe detect.ProbeFunc) (string, string) {
	if u := strings.TrimSpace(opts.BaseURL); u != "" {
		return u, "command line"
	}
	if u := strings.TrimSpace(st.BaseURL); u != "" {
		return u, "saved state"
	}
	if len(opts.Candidates) > 0 {
		if winner, ok := detect.Race(ctx, opts.Candidates, probe); ok {
			return winner, "auto-detected"
		}
	}
	return "", ""
}

// chatEcho POSTs a one-token prompt to chat/completions and checks for any
// well-formed completion.
func chatEcho(ctx context.Context, client *http.Client, baseURL, model, token string, timeout time.Duration) Check {
	check := Check{Name: "chat echo"}

	body, _ := json.Marshal(map[string]any{
		"model":      model,
		"messages":   []map[string]string{{"role": "user", "content": echoPrompt}},
		"max_tokens": 8,
	})
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		check.Status = statusFail
		check.Detail = err.Error()
		return check
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		check.Status = statusFail
		check.Detail = err.Error()
		return check
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		check.Status = statusFail
		check.Detail = fmt.Sprintf("status %d", resp.StatusCode)
		return check
	}
	var parsed struct {
		Choices []json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		check.Status = statusWarn
		check.Detail = "response had no choices"
		return check
	}
	check.Status = statusPass
	check.Detail = model
	return check
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// WriteReport stores the report as JSON under home.
func WriteReport(home string, report *Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(home, "doctor_report.json")
	if err := os.MkdirAll(home, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
