package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btroute/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !cfg.Profiles.ClassicMedia || !cfg.Profiles.LEAudio {
		t.Fatal("expected all profile groups enabled by default")
	}
	if cfg.Arbiter.DedupeCommands {
		t.Fatal("command dedup should default off")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
	if cfg.Arbiter.QueueSize != 64 {
		t.Fatalf("unexpected queue size: %d", cfg.Arbiter.QueueSize)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[profiles]",
		"hearing_aid = false",
		"le_hearing_aid = false",
		"[arbiter]",
		"queue_size = 16",
		"dedupe_commands = true",
		"[logging]",
		"level = \"debug\"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Profiles.HearingAid {
		t.Fatal("expected hearing aid disabled")
	}
	if cfg.Arbiter.QueueSize != 16 || !cfg.Arbiter.DedupeCommands {
		t.Fatalf("unexpected arbiter config: %+v", cfg.Arbiter)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Logging.Level)
	}
}

func TestSocketPathDefaultsUnderStateDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Dir(cfg.Paths.SocketPath) != cfg.Paths.StateDir {
		t.Fatalf("socket %q not under state dir %q", cfg.Paths.SocketPath, cfg.Paths.StateDir)
	}
}

func TestValidateRejectsAllGroupsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Profiles = config.Profiles{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure with no routable groups")
	}
}

func TestValidateRejectsOrphanLEHearingAid(t *testing.T) {
	cfg := config.Default()
	cfg.Profiles.LEAudio = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for le_hearing_aid without le_audio")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for log format")
	}
}

func TestSampleConfigNotEmpty(t *testing.T) {
	if !strings.Contains(config.SampleConfig(), "[profiles]") {
		t.Fatal("sample config should document the profiles section")
	}
}
