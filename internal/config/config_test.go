package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("CORS_PARENT_DOMAIN", ".example.dev")
	t.Setenv("TRUST_PROXY_HEADERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != StorageBackendPostgres {
		t.Errorf("got backend %q, want %q", cfg.Storage.Backend, StorageBackendPostgres)
	}
	if cfg.CORS.ParentDomain != "example.dev" {
		t.Errorf("got parent domain %q, want %q", cfg.CORS.ParentDomain, "example.dev")
	}
	if cfg.RateLimit.TrustProxyHeaders {
		t.Error("proxy headers must not be trusted by default")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no kafka brokers by default, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_TrustProxyHeaders(t *testing.T) {
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.RateLimit.TrustProxyHeaders {
		t.Error("expected TRUST_PROXY_HEADERS=true to be honoured")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestLoad_SQLiteBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/links.db")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != StorageBackendSQLite {
		t.Errorf("got backend %q, want %q", cfg.Storage.Backend, StorageBackendSQLite)
	}
	if cfg.SQLite.Path != "/tmp/links.db" {
		t.Errorf("got path %q", cfg.SQLite.Path)
	}
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != ClientBackendLocal {
		t.Errorf("got backend %q, want %q", cfg.Backend, ClientBackendLocal)
	}
	if cfg.Local.StorageKey != "microfix-dashboard-links" {
		t.Errorf("got storage key %q", cfg.Local.StorageKey)
	}
	if cfg.Remote.Timeout != 10*time.Second {
		t.Errorf("got timeout %v, want 10s", cfg.Remote.Timeout)
	}
}

func TestLoadClient_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("backend: remote\nremote:\n  api_url: http://api.internal:3001\n  timeout: 3s\n")
	if err := os.WriteFile(filepath.Join(dir, "dashboard.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_REMOTE_API_URL", "http://override:9000")

	cfg, err := LoadClient(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != ClientBackendRemote {
		t.Errorf("got backend %q, want remote", cfg.Backend)
	}
	if cfg.Remote.APIURL != "http://override:9000" {
		t.Errorf("env should override file, got %q", cfg.Remote.APIURL)
	}
	if cfg.Remote.Timeout != 3*time.Second {
		t.Errorf("got timeout %v, want 3s", cfg.Remote.Timeout)
	}
}

func TestLoadClient_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("DASHBOARD_BACKEND", "indexeddb")

	if _, err := LoadClient(t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
