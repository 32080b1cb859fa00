package detect

import (
	"context"
	"fmt"
)

// ListModels fetches <baseURL>/models via probe and returns the model IDs
// from the "data" array, preserving server order.
func ListModels(ctx context.Context, probe ProbeFunc, baseURL string) ([]string, error) {
	out := probe(ctx, baseURL)
	if !out.OK {
		return nil, fmt.Errorf("fetch models from %s: %w", baseURL, out.Err)
	}
	entries, _ := out.Payload["data"].([]any)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := m["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// contextWindowKeys are the metadata fields local servers commonly use to
// advertise a model's context window.
var contextWindowKeys = []string{
	"context_length",
	"max_context_length",
	"context_window",
	"max_context_window",
	"n_ctx",
}

// nestedMetaKeys are sub-objects that sometimes carry the same fields.
var nestedMetaKeys = []string{"metadata", "settings", "config", "parameters"}

// AutoContextWindow makes a best-effort guess at the context window for
// modelID by scanning /models metadata. It prefers the entry matching
// modelID, falls back to any entry with usable metadata, and returns 0 when
// nothing is found or the fetch fails.
func AutoContextWindow(ctx context.Context, probe ProbeFunc, baseURL, modelID string) int {
	out := probe(ctx, baseURL)
	if !out.OK {
		return 0
	}
	entries, _ := out.Payload["data"].([]any)

	scan := func(match func(map[string]any) bool) int {
		for _, e := range entries {
			m, ok := e.(map[string]any)
			if !ok || !match(m) {
				continue
			}
			if ctxWin := extractContextWindow(m); ctxWin > 0 {
				return ctxWin
			}
			if meta, ok := m["meta"].(map[string]any); ok {
				if ctxWin := extractContextWindow(meta); ctxWin > 0 {
					return ctxWin
				}
			}
		}
		return 0
	}

	if ctxWin := scan(func(m map[string]any) bool { id, _ := m["id"].(string); return id == modelID }); ctxWin > 0 {
		return ctxWin
	}
	return scan(func(map[string]any) bool { return true })
}

func extractContextWindow(meta map[string]any) int {
	for _, k := range contextWindowKeys {
		if v := intField(meta, k); v > 0 {
			return v
		}
		for _, sub := range nestedMetaKeys {
			if nested, ok := meta[sub].(map[string]any); ok {
				if v := intField(nested, k); v > 0 {
					return v
				}
			}
		}
	}
	return 0
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		if v > 0 && v == float64(int(v)) {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return 0
}
