package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/danshapiro/codexlink/internal/state"
)

func sampleState() state.State {
	return state.State{
		BaseURL:  "http://localhost:1234/v1/",
		Provider: "lmstudio",
		Profile:  "lmstudio",
		Model:    "llama-3",
		EnvKey:   "NULLKEY",
	}
}

func TestBuildShape(t *testing.T) {
	cfg := Build(sampleState(), Options{
		ApprovalPolicy:      "on-failure",
		SandboxMode:         "workspace-write",
		RequestMaxRetries:   4,
		StreamMaxRetries:    10,
		StreamIdleTimeoutMS: 300000,
	})

	if cfg.Model != "llama-3" || cfg.ModelProvider != "lmstudio" || cfg.Profile != "lmstudio" {
		t.Fatalf("root keys wrong: %+v", cfg)
	}
	prov, ok := cfg.ModelProviders["lmstudio"]
	if !ok {
		t.Fatal("chosen provider missing from model_providers")
	}
	if prov.Name != "LM Studio" {
		t.Fatalf("provider name = %q", prov.Name)
	}
	if prov.BaseURL != "http://localhost:1234/v1" {
		t.Fatalf("base URL not trimmed: %q", prov.BaseURL)
	}
	if prov.WireAPI != "chat" {
		t.Fatalf("wire_api = %q", prov.WireAPI)
	}
	prof, ok := cfg.Profiles["lmstudio"]
	if !ok || prof.Model != "llama-3" {
		t.Fatalf("profile wrong: %+v", prof)
	}
}

func TestBuildDefaultsAndAzure(t *testing.T) {
	cfg := Build(state.State{Provider: "azure", BaseURL: "https://example.openai.azure.com/openai"},
		Options{AzureAPIVersion: "2025-04-01-preview"})

	if cfg.Model != "gpt-5" {
		t.Fatalf("default model = %q, want gpt-5", cfg.Model)
	}
	prov := cfg.ModelProviders["azure"]
	if prov.QueryParams["api-version"] != "2025-04-01-preview" {
		t.Fatalf("azure query params missing: %+v", prov.QueryParams)
	}
	if cfg.History.Persistence != "save-all" {
		t.Fatalf("history persistence = %q", cfg.History.Persistence)
	}

	noHist := Build(sampleState(), Options{NoHistory: true})
	if noHist.History.Persistence != "none" {
		t.Fatalf("no-history persistence = %q", noHist.History.Persistence)
	}
}

func TestTOMLOmitsEmptiesKeepsZeroes(t *testing.T) {
	cfg := Build(sampleState(), Options{})
	text, err := ToTOML(cfg)
	if err != nil {
		t.Fatalf("ToTOML: %v", err)
	}
	if strings.Contains(text, "file_opener") {
		t.Fatal("empty file_opener was emitted")
	}
	if !strings.Contains(text, "model_context_window = 0") {
		t.Fatal("zero model_context_window was dropped; 0 is a meaningful value")
	}
	if !strings.Contains(text, "disable_response_storage = false") {
		t.Fatal("false disable_response_storage was dropped")
	}
	if !strings.Contains(text, "[model_providers.lmstudio]") {
		t.Fatalf("provider table missing:\n%s", text)
	}
}

func TestJSONAndYAMLRoundTrip(t *testing.T) {
	cfg := Build(sampleState(), Options{ApprovalPolicy: "on-failure"})

	jsonText, err := ToJSON(cfg)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal([]byte(jsonText), &fromJSON); err != nil {
		t.Fatalf("emitted JSON does not parse: %v", err)
	}
	if fromJSON["model"] != "llama-3" {
		t.Fatalf("JSON model = %v", fromJSON["model"])
	}

	yamlText, err := ToYAML(cfg)
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal([]byte(yamlText), &fromYAML); err != nil {
		t.Fatalf("emitted YAML does not parse: %v", err)
	}
	if fromYAML["model_provider"] != "lmstudio" {
		t.Fatalf("YAML model_provider = %v", fromYAML["model_provider"])
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := Build(sampleState(), Options{})
	targets := []Target{
		{Path: filepath.Join(dir, "config.toml"), Render: ToTOML},
		{Path: filepath.Join(dir, "config.json"), Render: ToJSON},
	}

	results, err := WriteOutputs(nil, cfg, targets, WriteOpts{})
	if err != nil {
		t.Fatalf("WriteOutputs: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("wrote %d targets, want 2", len(results))
	}
	for _, res := range results {
		if _, err := os.Stat(res.Path); err != nil {
			t.Fatalf("output %s missing: %v", res.Path, err)
		}
		if res.Fingerprint == "" {
			t.Fatal("missing fingerprint")
		}
	}

	// Second write backs up the first.
	results, err = WriteOutputs(nil, cfg, targets[:1], WriteOpts{})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if results[0].Backup == "" {
		t.Fatal("rewrite produced no backup")
	}
}

func TestWriteOutputsDryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := Build(sampleState(), Options{})
	path := filepath.Join(dir, "config.toml")

	results, err := WriteOutputs(nil, cfg, []Target{{Path: path, Render: ToTOML}}, WriteOpts{DryRun: true})
	if err != nil {
		t.Fatalf("WriteOutputs: %v", err)
	}
	if !results[0].DryRun {
		t.Fatal("result not marked dry-run")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("dry run touched disk")
	}
}

func TestWriteOutputsNoBackup(t *testing.T) {
	dir := t.TempDir()
	cfg := Build(sampleState(), Options{})
	targets := []Target{{Path: filepath.Join(dir, "config.toml"), Render: ToTOML}}

	if _, err := WriteOutputs(nil, cfg, targets, WriteOpts{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	results, err := WriteOutputs(nil, cfg, targets, WriteOpts{NoBackup: true})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if results[0].Backup != "" {
		t.Fatalf("NoBackup rewrite still produced %s", results[0].Backup)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only config.toml", len(entries))
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("same text")
	b := Fingerprint("same text")
	c := Fingerprint("other text")
	if a != b {
		t.Fatal("fingerprint not deterministic")
	}
	if a == c {
		t.Fatal("fingerprint collision on different text")
	}
	if len(a) != 32 {
		t.Fatalf("fingerprint length %d, want 32 hex chars", len(a))
	}
}
