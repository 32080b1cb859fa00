// Package providerspec is the catalog of OpenAI-compatible providers the
// linker knows how to target: canonical keys, display labels, default base
// URLs, and API key environment variable names.
package providerspec

import (
	"strings"
	"sync"
)

// WireAPI selects the request shape the provider speaks.
type WireAPI string

const (
	WireChat      WireAPI = "chat"
	WireResponses WireAPI = "responses"
)

// Spec describes one provider target. Local servers carry a localhost base
// URL; hosted ones carry their public endpoint and a real key env.
type Spec struct {
	Key     string
	Label   string
	BaseURL string
	EnvKey  string
	Wire    WireAPI
	Aliases []string
	Local   bool
}

var (
	providerAliasOnce  sync.Once
	providerAliasIndex map[string]string
)

func providerAliases() map[string]string {
	providerAliasOnce.Do(func() {
		providerAliasIndex = providerAliasIndexFromBuiltins(Builtins())
	})
	return providerAliasIndex
}

func providerAliasIndexFromBuiltins(specs map[string]Spec) map[string]string {
	out := map[string]string{}
	for rawKey, spec := range specs {
		key := strings.ToLower(strings.TrimSpace(rawKey))
		if key == "" {
			continue
		}
		out[key] = key
		for _, rawAlias := range spec.Aliases {
			alias := strings.ToLower(strings.TrimSpace(rawAlias))
			if alias != "" {
				out[alias] = key
			}
		}
	}
	return out
}

// CanonicalProviderKey maps aliases ("text-gen-webui", "azure-openai") to
// their canonical keys. Unknown keys pass through lowercased so users can
// point the linker at providers the catalog has never heard of.
func CanonicalProviderKey(in string) string {
	key := strings.ToLower(strings.TrimSpace(in))
	if key == "" {
		return ""
	}
	if canonical, ok := providerAliases()[key]; ok {
		return canonical
	}
	return key
}

// CommonBaseURLs returns the ordered candidate list for auto-detection:
// local servers first (the usual case for this tool), hosted endpoints last.
func CommonBaseURLs() []string {
	out := make([]string, 0, len(detectOrder))
	for _, key := range detectOrder {
		if spec, ok := Builtin(key); ok && spec.BaseURL != "" {
			out = append(out, spec.BaseURL)
		}
	}
	return out
}

// InferProvider guesses the provider key from a base URL by matching against
// builtin defaults; unknown URLs map to "custom".
func InferProvider(baseURL string) string {
	u := strings.TrimRight(strings.ToLower(strings.TrimSpace(baseURL)), "/")
	if u == "" {
		return "custom"
	}
	for key, spec := range Builtins() {
		if strings.TrimRight(strings.ToLower(spec.BaseURL), "/") == u {
			return key
		}
	}
	return "custom"
}

// Label returns the human-readable name for a provider key, falling back to
// the key itself.
func Label(key string) string {
	if spec, ok := Builtin(CanonicalProviderKey(key)); ok {
		return spec.Label
	}
	return key
}
