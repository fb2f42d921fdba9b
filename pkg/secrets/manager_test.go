package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvProvider(t *testing.T) {
	t.Run("maps secret names to prefixed env vars", func(t *testing.T) {
		t.Setenv("RELAY_SECRET_GITHUB_TOKEN", "ghp_test")

		p := NewEnvProvider("RELAY_SECRET_")
		got, err := p.GetSecret(context.Background(), "github-token")
		if err != nil {
			t.Fatalf("GetSecret() error = %v", err)
		}
		if got != "ghp_test" {
			t.Errorf("value = %q, want ghp_test", got)
		}
	})

	t.Run("missing variable is an error", func(t *testing.T) {
		p := NewEnvProvider("RELAY_SECRET_")
		if _, err := p.GetSecret(context.Background(), "nonexistent-token"); err == nil {
			t.Error("expected error for missing env var")
		}
	})
}

func TestFileProvider(t *testing.T) {
	t.Run("reads and trims a 0600 secret file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "github-token")
		if err := os.WriteFile(path, []byte("ghp_file\n"), 0600); err != nil {
			t.Fatal(err)
		}

		p, err := NewFileProvider(dir, false)
		if err != nil {
			t.Fatalf("NewFileProvider() error = %v", err)
		}
		defer p.Close()

		got, err := p.GetSecret(context.Background(), "github-token")
		if err != nil {
			t.Fatalf("GetSecret() error = %v", err)
		}
		if got != "ghp_file" {
			t.Errorf("value = %q, want trimmed content", got)
		}
	})

	t.Run("rejects world-readable files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "token"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		p, err := NewFileProvider(dir, false)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Close()

		if _, err := p.GetSecret(context.Background(), "token"); err == nil {
			t.Error("expected error for insecure permissions")
		}
	})
}

func TestManager(t *testing.T) {
	t.Run("file provider wins over env fallback", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "github-token"), []byte("from-file"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("RELAY_SECRET_GITHUB_TOKEN", "from-env")

		fp, err := NewFileProvider(dir, false)
		if err != nil {
			t.Fatal(err)
		}
		defer fp.Close()

		m := NewManager(fp, NewEnvProvider("RELAY_SECRET_"))
		got, err := m.GetSecret(context.Background(), "github-token")
		if err != nil {
			t.Fatalf("GetSecret() error = %v", err)
		}
		if got != "from-file" {
			t.Errorf("value = %q, want the file provider to win", got)
		}
	})

	t.Run("falls back to env when no file exists", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("RELAY_SECRET_GITHUB_TOKEN", "from-env")

		fp, err := NewFileProvider(dir, false)
		if err != nil {
			t.Fatal(err)
		}
		defer fp.Close()

		m := NewManager(fp, NewEnvProvider("RELAY_SECRET_"))
		got, err := m.GetSecret(context.Background(), "github-token")
		if err != nil || got != "from-env" {
			t.Errorf("GetSecret() = (%q, %v), want env fallback", got, err)
		}
	})

	t.Run("named source resolves through the chain", func(t *testing.T) {
		t.Setenv("RELAY_SECRET_GITHUB_TOKEN", "tok")
		m := NewManager(NewEnvProvider("RELAY_SECRET_"))

		src := m.Source("github-token")
		got, err := src.Token(context.Background())
		if err != nil || got != "tok" {
			t.Errorf("Token() = (%q, %v), want tok", got, err)
		}
	})
}
