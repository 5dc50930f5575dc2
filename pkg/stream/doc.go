// Package stream relays a provider's event sequence to an outbound
// connection with well-formed framing.
//
// A Multiplexer moves through Idle, Started, Streaming and Terminated.
// Start is written as soon as the request is accepted, Content events are
// relayed in arrival order, and exactly one End or Error closes the stream.
// Once Terminated, every further write is dropped.
//
// Framing is delegated to an Encoder: SSEEncoder writes "data: <json>\n\n"
// frames, NDJSONEncoder writes one JSON object per line.
package stream
