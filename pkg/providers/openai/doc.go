// Package openai implements the OpenAI streaming adapter.
//
// Requests go through the official openai-go SDK's chat completions
// streaming call. Only text deltas of choice index 0 are relayed; role-only
// and tool-call deltas are skipped. SDK retries are disabled so transport
// failures reach the caller unmodified.
//
// # Basic Usage
//
//	adapter, err := openai.NewProvider(providers.AdapterConfig{
//	    ID:     providers.OpenAI,
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Close()
//
//	native, err := adapter.Normalize(req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range adapter.Stream(ctx, native) {
//	    fmt.Print(ev.Content)
//	}
package openai
