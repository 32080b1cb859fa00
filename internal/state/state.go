// Package state persists the user's non-secret selections between runs.
// The API key lives in memory only; it is never written to disk here.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State carries the last selections and preferences. All fields default to
// benign zero values.
type State struct {
	BaseURL          string `json:"base_url"`
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Profile          string `json:"profile"`
	APIKey           string `json:"-"`
	EnvKey           string `json:"env_key"`
	ApprovalPolicy   string `json:"approval_policy"`
	SandboxMode      string `json:"sandbox_mode"`
	ReasoningEffort  string `json:"reasoning_effort"`
	ReasoningSummary string `json:"reasoning_summary"`
	Verbosity        string `json:"verbosity"`
	NoHistory        bool   `json:"no_history"`
	HistoryMaxBytes  int    `json:"history_max_bytes"`
}

// Load reads state from path. A missing, unreadable, or malformed file is
// not an error: callers get defaults and the CLI stays usable.
func Load(path string) State {
	var s State
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}
	}
	return s
}

// Save writes state to path as indented JSON, creating parents as needed.
// Keys already in the file that this tool does not own are preserved.
func (s State) Save(path string) error {
	existing := map[string]json.RawMessage{}
	if data, err := os.ReadFile(path); err == nil {
		// Best effort: a corrupt file is simply replaced.
		_ = json.Unmarshal(data, &existing)
	}

	own, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var ownMap map[string]json.RawMessage
	if err := json.Unmarshal(own, &ownMap); err != nil {
		return err
	}
	for k, v := range ownMap {
		existing[k] = v
	}

	out, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
