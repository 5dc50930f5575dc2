package credentials

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads credentials from individual files in a directory.
//
// Values are cached after the first read. With watching enabled the cache
// is dropped whenever a file in the directory changes, so a rotated secret
// is picked up by the next adapter created for that provider.
type FileSource struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	cache   map[string]string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileSource creates a source for the files in dir.
func NewFileSource(dir string, watch bool, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat credentials directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("credentials path is not a directory: %s", dir)
	}

	s := &FileSource{
		dir:    abs,
		logger: logger.With("component", "credentials.file"),
		cache:  make(map[string]string),
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := watcher.Add(abs); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch credentials directory: %w", err)
		}
		s.watcher = watcher
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
		go s.watchLoop()
	}

	s.logger.Info("credential files enabled", "path", abs, "watch", watch)
	return s, nil
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Lookup implements Source. It tries the file named exactly like name,
// then its lower-case form. Unreadable or overly permissive files are
// logged and treated as missing.
func (s *FileSource) Lookup(name string) (string, bool) {
	if !validName(name) {
		return "", false
	}

	s.mu.RLock()
	v, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return v, true
	}

	for _, candidate := range []string{name, strings.ToLower(name)} {
		v, err := s.read(candidate)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("ignoring credential file", "file", candidate, "error", err)
			}
			continue
		}
		if v == "" {
			continue
		}

		s.mu.Lock()
		s.cache[name] = v
		s.mu.Unlock()
		return v, true
	}
	return "", false
}

// read returns the trimmed contents of dir/file.
func (s *FileSource) read(file string) (string, error) {
	path := filepath.Join(s.dir, file)

	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		// Secret volume entries are symlinks.
		if info, err = os.Stat(path); err != nil {
			return "", err
		}
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file")
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return "", fmt.Errorf("insecure permissions %o (expected 0600 or 0400)", mode)
	}

	// #nosec G304 - file is a single path element inside dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Refresh drops cached values so the next lookup reads the files again.
func (s *FileSource) Refresh() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Close stops the file watcher.
func (s *FileSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.stopCh)
	err := s.watcher.Close()
	<-s.doneCh
	return err
}

func (s *FileSource) watchLoop() {
	defer close(s.doneCh)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("credential files changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			s.Refresh()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("credential watcher error", "error", err)

		case <-s.stopCh:
			return
		}
	}
}

// validName accepts a single, non-hidden path element.
func validName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}
