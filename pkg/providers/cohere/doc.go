// Package cohere implements the Cohere v1 chat adapter.
//
// Cohere streams newline-delimited JSON objects, each carrying an
// event_type. text-generation events become Content events and stream-end
// terminates the stream; its finish_reason decides between End and Error.
package cohere
