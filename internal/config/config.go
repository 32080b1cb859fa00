// Package config builds the codex configuration from the user's selections
// and renders it to TOML, JSON, or YAML. The Config struct is the single
// source of truth for all three emitters.
package config

import (
	"strings"

	"github.com/danshapiro/codexlink/internal/providerspec"
	"github.com/danshapiro/codexlink/internal/state"
)

type Provider struct {
	Name                string            `toml:"name" json:"name" yaml:"name"`
	BaseURL             string            `toml:"base_url" json:"base_url" yaml:"base_url"`
	EnvKey              string            `toml:"env_key,omitempty" json:"env_key,omitempty" yaml:"env_key,omitempty"`
	WireAPI             string            `toml:"wire_api" json:"wire_api" yaml:"wire_api"`
	RequestMaxRetries   int               `toml:"request_max_retries" json:"request_max_retries" yaml:"request_max_retries"`
	StreamMaxRetries    int               `toml:"stream_max_retries" json:"stream_max_retries" yaml:"stream_max_retries"`
	StreamIdleTimeoutMS int               `toml:"stream_idle_timeout_ms" json:"stream_idle_timeout_ms" yaml:"stream_idle_timeout_ms"`
	QueryParams         map[string]string `toml:"query_params,omitempty" json:"query_params,omitempty" yaml:"query_params,omitempty"`
}

type Profile struct {
	Model                string `toml:"model" json:"model" yaml:"model"`
	ModelProvider        string `toml:"model_provider" json:"model_provider" yaml:"model_provider"`
	ModelContextWindow   int    `toml:"model_context_window" json:"model_context_window" yaml:"model_context_window"`
	ModelMaxOutputTokens int    `toml:"model_max_output_tokens" json:"model_max_output_tokens" yaml:"model_max_output_tokens"`
	ApprovalPolicy       string `toml:"approval_policy" json:"approval_policy" yaml:"approval_policy"`
}

type History struct {
	Persistence string `toml:"persistence" json:"persistence" yaml:"persistence"`
	MaxBytes    int    `toml:"max_bytes" json:"max_bytes" yaml:"max_bytes"`
}

type SandboxWorkspaceWrite struct {
	WritableRoots       []string `toml:"writable_roots,omitempty" json:"writable_roots,omitempty" yaml:"writable_roots,omitempty"`
	NetworkAccess       bool     `toml:"network_access" json:"network_access" yaml:"network_access"`
	ExcludeTmpdirEnvVar bool     `toml:"exclude_tmpdir_env_var" json:"exclude_tmpdir_env_var" yaml:"exclude_tmpdir_env_var"`
	ExcludeSlashTmp     bool     `toml:"exclude_slash_tmp" json:"exclude_slash_tmp" yaml:"exclude_slash_tmp"`
}

type Tools struct {
	WebSearch bool `toml:"web_search" json:"web_search" yaml:"web_search"`
}

type Config struct {
	Model                  string                `toml:"model" json:"model" yaml:"model"`
	ModelProvider          string                `toml:"model_provider" json:"model_provider" yaml:"model_provider"`
	ApprovalPolicy         string                `toml:"approval_policy,omitempty" json:"approval_policy,omitempty" yaml:"approval_policy,omitempty"`
	SandboxMode            string                `toml:"sandbox_mode,omitempty" json:"sandbox_mode,omitempty" yaml:"sandbox_mode,omitempty"`
	FileOpener             string                `toml:"file_opener,omitempty" json:"file_opener,omitempty" yaml:"file_opener,omitempty"`
	ModelReasoningEffort   string                `toml:"model_reasoning_effort,omitempty" json:"model_reasoning_effort,omitempty" yaml:"model_reasoning_effort,omitempty"`
	ModelReasoningSummary  string                `toml:"model_reasoning_summary,omitempty" json:"model_reasoning_summary,omitempty" yaml:"model_reasoning_summary,omitempty"`
	ModelVerbosity         string                `toml:"model_verbosity,omitempty" json:"model_verbosity,omitempty" yaml:"model_verbosity,omitempty"`
	Profile                string                `toml:"profile" json:"profile" yaml:"profile"`
	ModelContextWindow     int                   `toml:"model_context_window" json:"model_context_window" yaml:"model_context_window"`
	ModelMaxOutputTokens   int                   `toml:"model_max_output_tokens" json:"model_max_output_tokens" yaml:"model_max_output_tokens"`
	ProjectDocMaxBytes     int                   `toml:"project_doc_max_bytes" json:"project_doc_max_bytes" yaml:"project_doc_max_bytes"`
	DisableResponseStorage bool                  `toml:"disable_response_storage" json:"disable_response_storage" yaml:"disable_response_storage"`
	Tools                  Tools                 `toml:"tools" json:"tools" yaml:"tools"`
	SandboxWorkspaceWrite  SandboxWorkspaceWrite `toml:"sandbox_workspace_write" json:"sandbox_workspace_write" yaml:"sandbox_workspace_write"`
	History                History               `toml:"history" json:"history" yaml:"history"`
	ModelProviders         map[string]Provider   `toml:"model_providers" json:"model_providers" yaml:"model_providers"`
	Profiles               map[string]Profile    `toml:"profiles" json:"profiles" yaml:"profiles"`
}

// Options are the knobs the CLI exposes beyond what State remembers.
type Options struct {
	Model                  string
	ApprovalPolicy         string
	SandboxMode            string
	FileOpener             string
	ReasoningEffort        string
	ReasoningSummary       string
	Verbosity              string
	ContextWindow          int
	MaxOutputTokens        int
	ProjectDocMaxBytes     int
	RequestMaxRetries      int
	StreamMaxRetries       int
	StreamIdleTimeoutMS    int
	AzureAPIVersion        string
	DisableResponseStorage bool
	NoHistory              bool
	HistoryMaxBytes        int
	WebSearch              bool
}

// Build translates the saved state plus CLI options into the config all
// emitters render.
func Build(st state.State, opts Options) Config {
	model := firstNonEmpty(opts.Model, st.Model, "gpt-5")
	provider := firstNonEmpty(st.Provider, "custom")
	profile := firstNonEmpty(st.Profile, provider)

	persistence := "save-all"
	if opts.NoHistory {
		persistence = "none"
	}

	prov := Provider{
		Name:                providerspec.Label(provider),
		BaseURL:             strings.TrimRight(st.BaseURL, "/"),
		EnvKey:              st.EnvKey,
		WireAPI:             string(wireFor(provider)),
		RequestMaxRetries:   opts.RequestMaxRetries,
		StreamMaxRetries:    opts.StreamMaxRetries,
		StreamIdleTimeoutMS: opts.StreamIdleTimeoutMS,
	}
	if opts.AzureAPIVersion != "" {
		prov.QueryParams = map[string]string{"api-version": opts.AzureAPIVersion}
	}

	return Config{
		Model:                  model,
		ModelProvider:          provider,
		ApprovalPolicy:         opts.ApprovalPolicy,
		SandboxMode:            opts.SandboxMode,
		FileOpener:             opts.FileOpener,
		ModelReasoningEffort:   opts.ReasoningEffort,
		ModelReasoningSummary:  opts.ReasoningSummary,
		ModelVerbosity:         opts.Verbosity,
		Profile:                profile,
		ModelContextWindow:     opts.ContextWindow,
		ModelMaxOutputTokens:   opts.MaxOutputTokens,
		ProjectDocMaxBytes:     opts.ProjectDocMaxBytes,
		DisableResponseStorage: opts.DisableResponseStorage,
		Tools:                  Tools{WebSearch: opts.WebSearch},
		History:                History{Persistence: persistence, MaxBytes: opts.HistoryMaxBytes},
		ModelProviders:         map[string]Provider{provider: prov},
		Profiles: map[string]Profile{
			profile: {
				Model:                model,
				ModelProvider:        provider,
				ModelContextWindow:   opts.ContextWindow,
				ModelMaxOutputTokens: opts.MaxOutputTokens,
				ApprovalPolicy:       opts.ApprovalPolicy,
			},
		},
	}
}

func wireFor(provider string) providerspec.WireAPI {
	if spec, ok := providerspec.Builtin(provider); ok && spec.Wire != "" {
		return spec.Wire
	}
	return providerspec.WireChat
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
