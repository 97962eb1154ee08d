package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/me/kitlend/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSQLite(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// exerciseStore runs the lifecycle every Store must honour.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	tok, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty store: %v", err)
	}
	if tok != "" {
		t.Fatalf("empty store returned %q", tok)
	}

	if err := st.Save(ctx, "first"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save(ctx, "second"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if tok, _ := st.Load(ctx); tok != "second" {
		t.Errorf("Load = %q, want second", tok)
	}

	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
	if tok, _ := st.Load(ctx); tok != "" {
		t.Errorf("Load after Clear = %q", tok)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	st := NewFileStore(path)
	exerciseStore(t, st)

	if err := st.Save(context.Background(), "T"); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte(`"token": "T"`)) {
		t.Errorf("file content = %s", data)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, testSQLite(t, ":memory:"))
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	st := testSQLite(t, path)
	if err := st.Save(ctx, "persisted"); err != nil {
		t.Fatal(err)
	}
	st.Close()

	reopened := testSQLite(t, path)
	tok, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "persisted" {
		t.Errorf("Load = %q", tok)
	}
	at, ok, err := reopened.SavedAt(ctx)
	if err != nil || !ok {
		t.Fatalf("SavedAt = %v, %v, %v", at, ok, err)
	}
	if time.Since(at) > time.Minute {
		t.Errorf("SavedAt = %v, too old", at)
	}
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	st := testSQLite(t, ":memory:")
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if _, ok, err := st.SavedAt(context.Background()); err != nil || ok {
		t.Errorf("SavedAt on empty store = %v, %v", ok, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	ctx := context.Background()

	tests := []struct {
		cfg  config.StoreConfig
		want string
	}{
		{config.StoreConfig{Kind: config.StoreMemory}, "*session.MemoryStore"},
		{config.StoreConfig{Kind: config.StoreFile}, "*session.FileStore"},
		{config.StoreConfig{Kind: config.StoreSQLite, Path: filepath.Join(dir, "s.db")}, "*session.SQLiteStore"},
	}
	for _, tt := range tests {
		st, err := Open(ctx, tt.cfg, testLogger())
		if err != nil {
			t.Fatalf("Open(%+v): %v", tt.cfg, err)
		}
		got := fmt.Sprintf("%T", st)
		st.Close()
		if got != tt.want {
			t.Errorf("Open(%+v) = %s, want %s", tt.cfg, got, tt.want)
		}
	}

	fs, _ := Open(ctx, config.StoreConfig{Kind: config.StoreFile}, testLogger())
	if want := filepath.Join(dir, ".kitlend", "credentials.json"); fs.(*FileStore).Path() != want {
		t.Errorf("default path = %s, want %s", fs.(*FileStore).Path(), want)
	}

	if _, err := Open(ctx, config.StoreConfig{Kind: "etcd"}, testLogger()); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	info := Inspect(signed)
	if !info.JWT {
		t.Fatal("JWT = false")
	}
	if info.Subject != "42" {
		t.Errorf("Subject = %q", info.Subject)
	}
	if !info.Expiry.Equal(exp) {
		t.Errorf("Expiry = %v, want %v", info.Expiry, exp)
	}
	if info.IsExpired() {
		t.Error("IsExpired() = true for future expiry")
	}
}

func TestInspect_Opaque(t *testing.T) {
	for _, raw := range []string{"", "T", "abc.def"} {
		info := Inspect(raw)
		if info.JWT || !info.Expiry.IsZero() || info.IsExpired() {
			t.Errorf("Inspect(%q) = %+v", raw, info)
		}
	}
}

func TestTokenInfo_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
	}{
		{"past", time.Now().Add(-time.Hour), true},
		{"future", time.Now().Add(time.Hour), false},
		{"zero", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := TokenInfo{Expiry: tt.expiry}
			if got := info.IsExpired(); got != tt.expired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expired)
			}
		})
	}
}
