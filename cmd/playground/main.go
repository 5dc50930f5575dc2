// Playground relay is a streaming chat relay in front of several hosted LLM
// providers.
//
// It accepts one chat request shape for every provider, calls the chosen
// provider and relays the answer back as a stream of start, content, end
// and error events.
//
// Usage:
//
//	# Start the relay with default configuration
//	playground serve
//
//	# Start with a configuration file and hot-reloaded log level
//	playground serve --config /path/to/config.yaml --watch
//
//	# Show which providers have credentials
//	playground providers
//
//	# Export the last day of relay evidence as CSV
//	playground evidence query --since 24h --format csv
package main

import "os"

func main() {
	os.Exit(Execute())
}
