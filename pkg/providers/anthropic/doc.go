// Package anthropic implements the Anthropic Messages API streaming adapter.
//
// The adapter posts to /v1/messages with stream enabled and decodes the
// typed Server-Sent Events the API returns:
//
//   - content_block_delta with a text_delta: relayed as content
//   - content_block_delta with any other delta type: skipped
//   - message_start, content_block_start, content_block_stop, message_delta, ping: skipped
//   - message_stop: end of stream
//   - error: the stream fails with the provider's message
//
// Event types not listed are logged at debug level and skipped. A frame
// whose data is not valid JSON ends the stream with a malformed frame error,
// as does a connection that closes before message_stop.
package anthropic
