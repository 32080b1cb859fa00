package providerspec

var builtinSpecs = map[string]Spec{
	"lmstudio": {
		Key:     "lmstudio",
		Label:   "LM Studio",
		BaseURL: "http://localhost:1234/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Aliases: []string{"lm-studio", "lm_studio"},
		Local:   true,
	},
	"ollama": {
		Key:     "ollama",
		Label:   "Ollama",
		BaseURL: "http://localhost:11434/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Local:   true,
	},
	"vllm": {
		Key:     "vllm",
		Label:   "vLLM",
		BaseURL: "http://localhost:8000/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Local:   true,
	},
	"tgwui": {
		Key:     "tgwui",
		Label:   "Text-Gen-WebUI",
		BaseURL: "http://localhost:5000/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Aliases: []string{"text-gen-webui", "textgen"},
		Local:   true,
	},
	"tgi": {
		Key:     "tgi",
		Label:   "TGI",
		BaseURL: "http://localhost:8080/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Aliases: []string{"text-generation-inference"},
		Local:   true,
	},
	"tgi-3000": {
		Key:     "tgi-3000",
		Label:   "TGI (port 3000)",
		BaseURL: "http://localhost:3000/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Local:   true,
	},
	"openrouter": {
		Key:     "openrouter",
		Label:   "OpenRouter Local",
		BaseURL: "http://localhost:7000/v1",
		EnvKey:  "OPENROUTER_API_KEY",
		Wire:    WireChat,
		Local:   true,
	},
	"openrouter-remote": {
		Key:     "openrouter-remote",
		Label:   "OpenRouter",
		BaseURL: "https://openrouter.ai/api/v1",
		EnvKey:  "OPENROUTER_API_KEY",
		Wire:    WireChat,
	},
	"koboldcpp": {
		Key:     "koboldcpp",
		Label:   "KoboldCpp",
		BaseURL: "http://localhost:5001/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Local:   true,
	},
	"anythingllm": {
		Key:     "anythingllm",
		Label:   "AnythingLLM",
		BaseURL: "http://localhost:3001/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Local:   true,
	},
	"jan": {
		Key:     "jan",
		Label:   "Jan AI",
		BaseURL: "http://localhost:1337/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Aliases: []string{"jan-ai"},
		Local:   true,
	},
	"llamacpp": {
		Key:     "llamacpp",
		Label:   "llama.cpp",
		BaseURL: "http://localhost:8081/v1",
		EnvKey:  "NULLKEY",
		Wire:    WireChat,
		Aliases: []string{"llama-cpp", "llama.cpp"},
		Local:   true,
	},
	"openai": {
		Key:     "openai",
		Label:   "OpenAI",
		BaseURL: "https://api.openai.com/v1",
		EnvKey:  "OPENAI_API_KEY",
		Wire:    WireResponses,
	},
	"anthropic": {
		Key:     "anthropic",
		Label:   "Anthropic",
		BaseURL: "https://api.anthropic.com/v1",
		EnvKey:  "ANTHROPIC_API_KEY",
		Wire:    WireChat,
	},
	"groq": {
		Key:     "groq",
		Label:   "Groq",
		BaseURL: "https://api.groq.com/openai/v1",
		EnvKey:  "GROQ_API_KEY",
		Wire:    WireChat,
	},
	"mistral": {
		Key:     "mistral",
		Label:   "Mistral",
		BaseURL: "https://api.mistral.ai/v1",
		EnvKey:  "MISTRAL_API_KEY",
		Wire:    WireChat,
	},
	"deepseek": {
		Key:     "deepseek",
		Label:   "DeepSeek",
		BaseURL: "https://api.deepseek.com/v1",
		EnvKey:  "DEEPSEEK_API_KEY",
		Wire:    WireChat,
	},
	"cohere": {
		Key:     "cohere",
		Label:   "Cohere",
		BaseURL: "https://api.cohere.com/v2",
		EnvKey:  "COHERE_API_KEY",
		Wire:    WireChat,
	},
	"baseten": {
		Key:     "baseten",
		Label:   "Baseten",
		BaseURL: "https://inference.baseten.co/v1",
		EnvKey:  "BASETEN_API_KEY",
		Wire:    WireChat,
	},
	"azure": {
		Key:     "azure",
		Label:   "Azure OpenAI",
		EnvKey:  "AZURE_OPENAI_API_KEY",
		Wire:    WireResponses,
		Aliases: []string{"azure-openai"},
	},
}

// detectOrder is the candidate order for the auto-detect race: the common
// local servers first, then hosted endpoints (which only answer /models with
// credentials but cost nothing to try).
var detectOrder = []string{
	"lmstudio",
	"ollama",
	"vllm",
	"tgwui",
	"tgi",
	"tgi-3000",
	"openrouter",
	"openrouter-remote",
	"anthropic",
	"groq",
	"mistral",
	"deepseek",
	"cohere",
	"baseten",
	"anythingllm",
}

func Builtin(key string) (Spec, bool) {
	s, ok := builtinSpecs[CanonicalProviderKey(key)]
	if !ok {
		return Spec{}, false
	}
	return cloneSpec(s), true
}

func Builtins() map[string]Spec {
	out := make(map[string]Spec, len(builtinSpecs))
	for key, spec := range builtinSpecs {
		out[key] = cloneSpec(spec)
	}
	return out
}

func cloneSpec(in Spec) Spec {
	out := in
	out.Aliases = append([]string{}, in.Aliases...)
	return out
}
