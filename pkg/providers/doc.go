// Package providers defines the provider-agnostic vocabulary of the relay.
//
// # Overview
//
// A chat request arrives as a ChatRequest naming one ProviderID. An Adapter
// for that provider turns it into a provider-native payload (Normalize) and
// then into a lazy sequence of Event values (Stream). The sequence holds
// zero or more Content events followed by exactly one End or Error; it is
// the only thing that crosses the relay's outbound boundary.
//
// # Architecture
//
//  1. Core types - ProviderID, ChatMessage, ChatRequest, Event
//  2. Adapter interface - Normalize and Stream, one implementation per provider
//  3. HTTPAdapter - pooled HTTP client with status code mapping, no retries
//  4. Stream helpers - SSEScanner, ReaderEvents
//  5. Error taxonomy - typed errors and Classify
//
// Adapters live in subpackages (openai, anthropic, google, cohere, generic).
// The registry that creates them lives in pkg/providerfactory.
//
// # Streaming
//
// Adapter.Stream returns an iter.Seq[Event]. Nothing happens until the
// caller ranges over it; each pull may block on network I/O:
//
//	for ev := range adapter.Stream(ctx, native) {
//	    switch ev.Type {
//	    case providers.EventContent:
//	        fmt.Print(ev.Content)
//	    case providers.EventError:
//	        log.Println(ev.Message)
//	    }
//	}
//
// Breaking out of the loop or cancelling ctx closes the provider connection.
//
// # Error Handling
//
//   - UnsupportedProviderError: identifier outside the supported set
//   - NotConfiguredError: credential missing for a supported provider
//   - ErrEmptyConversation: no user or assistant messages
//   - ValidationError: sampling parameter or role out of range
//   - TransportError, AuthError, RateLimitError: network or provider failure
//   - MalformedFrameError: a native frame that could not be parsed
//
// Classify maps any of them to a stable kind string for metrics and records.
package providers
