/*
Package tls serves the relay over HTTPS.

NewServerConfig turns the server's tls section into a crypto/tls
configuration whose certificate comes from a CertificateReloader:

	tlsConfig, reloader, err := securityTLS.NewServerConfig(cfg.Server.TLS, logger)
	if err != nil {
		return err
	}
	if err := reloader.Start(ctx); err != nil {
		return err
	}
	ln = tls.NewListener(ln, tlsConfig)

With a non-zero reload interval the reloader polls the certificate and
key files and swaps in a renewed pair when either changes. A pair that
fails to load or has expired is logged and the previous one stays in use.
*/
package tls
