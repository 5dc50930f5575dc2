package tls

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"mercator-hq/playground/pkg/config"
)

// ParseVersion converts a configured minimum version to its crypto/tls
// constant. An empty value means TLS 1.2. Versions below 1.2 are rejected.
func ParseVersion(version string) (uint16, error) {
	switch version {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (supported: 1.2, 1.3)", version)
	}
}

// NewServerConfig builds the listener configuration for cfg. Certificates
// are served through the returned reloader, which the caller must Start
// before accepting connections.
func NewServerConfig(cfg config.TLSConfig, logger *slog.Logger) (*tls.Config, *CertificateReloader, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, nil, fmt.Errorf("cert_file and key_file are required when TLS is enabled")
	}

	minVersion, err := ParseVersion(cfg.MinVersion)
	if err != nil {
		return nil, nil, err
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)

	// #nosec G402 - MinVersion is validated above (TLS 1.0/1.1 rejected)
	tlsConfig := &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: reloader.GetCertificateFunc(),
		NextProtos:     []string{"h2", "http/1.1"},
	}

	return tlsConfig, reloader, nil
}
