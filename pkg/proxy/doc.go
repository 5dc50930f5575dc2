// Package proxy holds the HTTP boundary helpers of the playground relay.
//
// The relay accepts chat requests from the playground UI and answers each
// with a stream of normalized events from the selected provider. This
// package decodes the request body, writes JSON responses and sets the
// headers of event stream responses; the endpoints themselves live in the
// handlers subpackage and the cross-cutting middleware in middleware.
//
// # Errors
//
// Only failures detected before the stream begins are answered with an
// HTTP error status:
//
//	{"error":{"message":"invalid JSON: unexpected end of JSON input","type":"invalid_request_error","param":"body","code":"invalid_json"}}
//
// Everything after that point is reported in-band as an error event.
package proxy
