package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DaemonAddr != Default().DaemonAddr {
		t.Fatalf("expected default addr, got %q", cfg.DaemonAddr)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.DaemonAddr = "10.0.0.2:9000"
	cfg.QueuePollMs = 250
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.DaemonAddr != "10.0.0.2:9000" || got.QueuePollMs != 250 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	// Fields absent from the file keep their defaults.
	if got.NoticeSeconds != Default().NoticeSeconds {
		t.Fatalf("expected default notice seconds, got %d", got.NoticeSeconds)
	}
}

func TestLoad_EnvOverridesDaemonAddr(t *testing.T) {
	t.Setenv("EXTRARR_DAEMON_ADDR", "192.168.1.9:7000")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DaemonAddr != "192.168.1.9:7000" {
		t.Fatalf("env override ignored, got %q", cfg.DaemonAddr)
	}
}

func TestStorePath(t *testing.T) {
	cfg := Default()
	if got := cfg.StorePath("/etc/extrarr/config.toml"); got != filepath.Join("/etc/extrarr", "extrarr.db") {
		t.Fatalf("unexpected store path %q", got)
	}
	cfg.DatabasePath = "/var/lib/extrarr.db"
	if got := cfg.StorePath("/etc/extrarr/config.toml"); got != "/var/lib/extrarr.db" {
		t.Fatalf("explicit path ignored, got %q", got)
	}
}

func TestDir_EnvOverride(t *testing.T) {
	t.Setenv("EXTRARR_CONFIG_DIR", "/tmp/extrarr-conf")
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/extrarr-conf" {
		t.Fatalf("env override ignored, got %q", dir)
	}
}
