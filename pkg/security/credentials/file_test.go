package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSecret(t *testing.T, dir, name, value string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), perm); err != nil {
		t.Fatal(err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, perm); err != nil {
		t.Fatal(err)
	}
}

func newFileSource(t *testing.T, dir string, watch bool) *FileSource {
	t.Helper()
	s, err := NewFileSource(dir, watch, nil)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFileSource_Lookup(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "OPENAI_API_KEY", "sk-exact\n", 0o600)
	writeSecret(t, dir, "cohere_api_key", "co-lower", 0o400)
	writeSecret(t, dir, "XAI_API_KEY", "xai", 0o644)
	writeSecret(t, dir, "MISTRAL_API_KEY", "  \n", 0o600)
	if err := os.Mkdir(filepath.Join(dir, "GOOGLE_API_KEY"), 0o700); err != nil {
		t.Fatal(err)
	}

	source := newFileSource(t, dir, false)

	tests := []struct {
		name   string
		key    string
		want   string
		wantOK bool
	}{
		{name: "exact name", key: "OPENAI_API_KEY", want: "sk-exact", wantOK: true},
		{name: "lower case file", key: "COHERE_API_KEY", want: "co-lower", wantOK: true},
		{name: "insecure permissions", key: "XAI_API_KEY"},
		{name: "blank file", key: "MISTRAL_API_KEY"},
		{name: "directory", key: "GOOGLE_API_KEY"},
		{name: "missing", key: "DEEPSEEK_API_KEY"},
		{name: "traversal", key: "../OPENAI_API_KEY"},
		{name: "hidden", key: ".env"},
		{name: "empty", key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := source.Lookup(tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFileSource_Symlink(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "..data")
	if err := os.Mkdir(data, 0o700); err != nil {
		t.Fatal(err)
	}
	writeSecret(t, data, "ANTHROPIC_API_KEY", "sk-ant", 0o600)
	if err := os.Symlink(filepath.Join("..data", "ANTHROPIC_API_KEY"), filepath.Join(dir, "ANTHROPIC_API_KEY")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if v, ok := newFileSource(t, dir, false).Lookup("ANTHROPIC_API_KEY"); !ok || v != "sk-ant" {
		t.Errorf("Lookup = %q, %v", v, ok)
	}
}

func TestFileSource_CacheAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "OPENAI_API_KEY", "first", 0o600)
	source := newFileSource(t, dir, false)

	if v, _ := source.Lookup("OPENAI_API_KEY"); v != "first" {
		t.Fatalf("Lookup = %q", v)
	}

	writeSecret(t, dir, "OPENAI_API_KEY", "second", 0o600)
	if v, _ := source.Lookup("OPENAI_API_KEY"); v != "first" {
		t.Errorf("cached Lookup = %q, want first", v)
	}

	source.Refresh()
	if v, _ := source.Lookup("OPENAI_API_KEY"); v != "second" {
		t.Errorf("Lookup after Refresh = %q, want second", v)
	}
}

func TestFileSource_WatchRefreshes(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "OPENAI_API_KEY", "first", 0o600)
	source := newFileSource(t, dir, true)

	if v, _ := source.Lookup("OPENAI_API_KEY"); v != "first" {
		t.Fatalf("Lookup = %q", v)
	}

	writeSecret(t, dir, "OPENAI_API_KEY", "rotated", 0o600)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if v, _ := source.Lookup("OPENAI_API_KEY"); v == "rotated" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("rotated credential not picked up")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestNewFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing"), file} {
		if _, err := NewFileSource(path, false, nil); err == nil {
			t.Errorf("NewFileSource(%q) should fail", path)
		}
	}
}
