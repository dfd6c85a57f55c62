package secretstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := store.Read(context.Background()); err == nil {
		t.Fatal("expected error reading missing file")
	}

	if err := store.Write(context.Background(), "  s3cret \n"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %04o, want 0600", info.Mode().Perm())
	}

	got, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Read = %q, want %q", got, "s3cret")
	}
}

func TestFileStore_RejectsInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("s3cret"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Error("expected error for 0644 secret file")
	}
}

func TestFileStore_RejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(" \n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Error("expected error for empty secret file")
	}
}

func TestEnvStore(t *testing.T) {
	env := map[string]string{"VT_SECRET": "s3cret", "EMPTY": ""}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	if _, err := newEnvStore("", lookup); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := newEnvStore("MISSING", lookup); err == nil {
		t.Error("expected error for unset variable")
	}

	store, err := newEnvStore("VT_SECRET", lookup)
	if err != nil {
		t.Fatalf("newEnvStore: %v", err)
	}
	got, err := store.Read(context.Background())
	if err != nil || got != "s3cret" {
		t.Errorf("Read = %q, %v; want %q", got, err, "s3cret")
	}
	if err := store.Write(context.Background(), "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Write error = %v, want ErrReadOnly", err)
	}

	empty, err := newEnvStore("EMPTY", lookup)
	if err != nil {
		t.Fatalf("newEnvStore: %v", err)
	}
	if _, err := empty.Read(context.Background()); err == nil {
		t.Error("expected error for empty variable")
	}
}

func TestNewEnvStore_ProcessEnvironment(t *testing.T) {
	t.Setenv("TAVLA_TEST_SECRET", "from-env")

	store, err := NewEnvStore("TAVLA_TEST_SECRET")
	if err != nil {
		t.Fatalf("NewEnvStore: %v", err)
	}
	got, err := store.Read(context.Background())
	if err != nil || got != "from-env" {
		t.Errorf("Read = %q, %v; want %q", got, err, "from-env")
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	if _, err := NewKeyringStore("", "user"); err == nil {
		t.Error("expected error for empty service")
	}
	if _, err := NewKeyringStore(KeyringService, ""); err == nil {
		t.Error("expected error for empty user")
	}

	store, err := NewKeyringStore(KeyringService, "alice")
	if err != nil {
		t.Fatalf("NewKeyringStore: %v", err)
	}

	if _, err := store.Read(context.Background()); err == nil {
		t.Error("expected error before secret is set")
	}

	if err := store.Write(context.Background(), "s3cret"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := store.Read(context.Background())
	if err != nil || got != "s3cret" {
		t.Errorf("Read = %q, %v; want %q", got, err, "s3cret")
	}
}

func TestStores_HonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	file, err := NewFileStore(filepath.Join(t.TempDir(), "secret"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	stores := map[string]Store{
		"file":    file,
		"keyring": &KeyringStore{service: KeyringService, user: "bob"},
		"env":     &EnvStore{envKey: "X", lookup: func(string) (string, bool) { return "v", true }},
	}
	for name, store := range stores {
		if _, err := store.Read(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("%s Read error = %v, want context.Canceled", name, err)
		}
		if err := store.Write(ctx, "x"); !errors.Is(err, context.Canceled) {
			t.Errorf("%s Write error = %v, want context.Canceled", name, err)
		}
	}
}
