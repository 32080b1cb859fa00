package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linker_config.json")
	s := State{
		BaseURL:  "http://localhost:1234/v1",
		Provider: "lmstudio",
		Model:    "llama-3",
		Profile:  "lmstudio",
		EnvKey:   "NULLKEY",
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := Load(path)
	if got.BaseURL != s.BaseURL || got.Provider != s.Provider || got.Model != s.Model {
		t.Fatalf("Load = %+v, want %+v", got, s)
	}
}

func TestAPIKeyNeverPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linker_config.json")
	s := State{BaseURL: "http://localhost:1234/v1", APIKey: "sk-very-secret"}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "sk-very-secret") {
		t.Fatal("API key leaked into the state file")
	}
}

func TestSavePreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linker_config.json")
	seed := `{"base_url":"http://old/v1","future_feature":{"enabled":true}}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s := State{BaseURL: "http://localhost:1234/v1"}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got map[string]any
	raw, _ := os.ReadFile(path)
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("state file is not JSON: %v", err)
	}
	if got["base_url"] != "http://localhost:1234/v1" {
		t.Fatalf("base_url not updated: %v", got["base_url"])
	}
	if _, ok := got["future_feature"]; !ok {
		t.Fatal("unknown key was dropped on save")
	}
}

func TestLoadMissingOrCorrupt(t *testing.T) {
	if got := Load(filepath.Join(t.TempDir(), "nope.json")); got != (State{}) {
		t.Fatalf("missing file should load defaults, got %+v", got)
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if got := Load(path); got != (State{}) {
		t.Fatalf("corrupt file should load defaults, got %+v", got)
	}
}
