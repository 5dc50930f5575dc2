// Package generic implements the blocking fallback adapter for
// OpenAI-compatible chat completion APIs.
//
// It serves providers without a dedicated streaming adapter here
// (xai, deepseek, mistral, perplexity). Each request is one blocking
// POST {base_url}/chat/completions; the whole answer is emitted as a
// single Content event followed by End:
//
//	p, err := generic.NewProvider(providers.AdapterConfig{
//	    ID:      providers.Mistral,
//	    BaseURL: "https://api.mistral.ai/v1",
//	    APIKey:  os.Getenv("MISTRAL_API_KEY"),
//	})
//
// Callers must not assume token-level incrementality from this adapter.
package generic
