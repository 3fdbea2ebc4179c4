package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Store: StoreConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			Provider: "remote",
			OpenAI:   RemoteEmbeddingConfig{APIKey: "test-key"},
		},
		LLM: LLMConfig{
			Primary: "groq",
			Providers: map[string]ProviderConfig{
				"groq":   {APIKey: "gk", Model: "llama-3.1-8b-instant"},
				"openai": {APIKey: "ok", Model: "gpt-4o-mini"},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingStoreAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing store addrs")
	}
}

func TestValidate_UnknownEmbeddingProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "huggingface"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown embedding provider")
	}
}

func TestValidate_RemoteEmbeddingNeedsKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.OpenAI.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing remote embedding key")
	}
}

func TestValidate_LocalEmbeddingNeedsNoKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "local"
	cfg.Embedding.OpenAI.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingPrimary(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Primary = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing primary provider")
	}
}

func TestValidate_PrimaryNotDefined(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Primary = "mistral"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for undefined primary provider")
	}
}

func TestValidate_PrimaryMissingKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Providers["groq"] = ProviderConfig{Model: "llama-3.1-8b-instant"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for primary provider without api_key")
	}
}

func TestValidate_SecondaryMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Secondary = "groq"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for secondary == primary")
	}
}

func TestValidate_SecondaryNotDefined(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Secondary = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for undefined secondary provider")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Store.KeyPrefix != "twinrag:" {
		t.Errorf("KeyPrefix = %q", cfg.Store.KeyPrefix)
	}
	if cfg.Embedding.Provider != "remote" {
		t.Errorf("Provider = %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.PadTo != 1536 {
		t.Errorf("PadTo = %d", cfg.Embedding.PadTo)
	}
	if cfg.Embedding.Ollama.Dimensions != 384 {
		t.Errorf("Ollama.Dimensions = %d", cfg.Embedding.Ollama.Dimensions)
	}
	if cfg.Pipeline.TopK != 3 {
		t.Errorf("TopK = %d", cfg.Pipeline.TopK)
	}
	if cfg.Pipeline.DisableEnhance || cfg.Pipeline.DisableFormat || cfg.Pipeline.DisableRetrieval {
		t.Error("stages should be enabled by default")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TWINRAG_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${TWINRAG_TEST_KEY}\nmodel: ${TWINRAG_TEST_MODEL:-gpt-4o-mini}")))
	want := "api_key: secret\nmodel: gpt-4o-mini"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}
