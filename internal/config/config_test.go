package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Fatalf("BackendURL = %q, want %q", cfg.BackendURL, DefaultBackendURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.StorageType != "memory" {
		t.Fatalf("StorageType = %q", cfg.StorageType)
	}
	if cfg.BlobTTL != 24*time.Hour {
		t.Fatalf("BlobTTL = %s", cfg.BlobTTL)
	}
}

func TestLoadBackendURLFromEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://items.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "https://items.example.com" {
		t.Fatalf("BackendURL = %q", cfg.BackendURL)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestNormalizeBackendURL(t *testing.T) {
	cases := map[string]struct {
		want    string
		wantErr bool
	}{
		"":                        {want: DefaultBackendURL},
		"http://localhost:9000//": {want: "http://localhost:9000"},
		"ftp://example.com":       {wantErr: true},
		"localhost:9000":          {wantErr: true},
		"http://":                 {wantErr: true},
	}

	for raw, tc := range cases {
		got, err := NormalizeBackendURL(raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q, want %q", raw, got, tc.want)
		}
	}
}
