// Package security groups the relay's transport and credential handling.
//
// Subpackages:
//   - credentials: provider API keys from the environment and secret files
//   - tls: HTTPS serving with certificate reload
package security
