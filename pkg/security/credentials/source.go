package credentials

import (
	"errors"
	"io"
	"os"
	"strings"
)

// Source resolves a credential by variable name.
type Source interface {
	// Lookup returns the credential and whether a non-empty value was found.
	Lookup(name string) (string, bool)

	// Name identifies the source in logs (env, file).
	Name() string
}

// Chain consults its sources in order.
type Chain []Source

// Lookup returns the first non-empty value any source holds for name. Its
// signature matches os.LookupEnv.
func (c Chain) Lookup(name string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Close closes every source that holds resources.
func (c Chain) Close() error {
	var errs []error
	for _, s := range c {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// EnvSource reads credentials from environment variables.
type EnvSource struct {
	lookupEnv func(string) (string, bool)
}

// NewEnvSource returns a source backed by os.LookupEnv.
func NewEnvSource() *EnvSource {
	return &EnvSource{lookupEnv: os.LookupEnv}
}

// NewEnvSourceFunc returns a source backed by fn.
func NewEnvSourceFunc(fn func(string) (string, bool)) *EnvSource {
	return &EnvSource{lookupEnv: fn}
}

// Lookup implements Source. Surrounding whitespace is ignored, so a
// variable holding only spaces counts as unset.
func (s *EnvSource) Lookup(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Name implements Source.
func (s *EnvSource) Name() string { return "env" }
