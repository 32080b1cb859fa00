package logship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Transport delivers one record to a remote collector. Send must respect ctx
// and return an error on any delivery failure; the dispatcher treats every
// error as a silent best-effort drop.
type Transport interface {
	Send(ctx context.Context, rec Record) error
	Close() error
}

// HTTPTransport POSTs records as JSON objects to a fixed URL.
type HTTPTransport struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPTransport builds a transport for url. client may be nil; token,
// when non-empty, is sent as a bearer header.
func NewHTTPTransport(url, token string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{url: url, token: token, client: client}
}

func (t *HTTPTransport) Send(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("log post %s: unexpected status %d", t.url, resp.StatusCode)
	}
	return nil
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
