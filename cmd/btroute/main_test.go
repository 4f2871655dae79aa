package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btroute/internal/device"
)

func TestRenderRolesListsEveryRole(t *testing.T) {
	out := renderRoles(map[string]string{
		device.RoleClassicMedia.String(): "AA:BB:CC:DD:EE:FF",
	})
	for _, role := range device.Roles() {
		if !strings.Contains(out, role.String()) {
			t.Fatalf("output missing role %q:\n%s", role, out)
		}
	}
	if !strings.Contains(out, "AA:BB:CC:DD:EE:FF") {
		t.Fatalf("output missing active address:\n%s", out)
	}
	if !strings.Contains(out, "-") {
		t.Fatalf("output missing placeholder for idle roles:\n%s", out)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "[paths]\nstate_dir = \"" + filepath.Join(dir, "state") + "\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "show", "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "state_dir") {
		t.Fatalf("output missing state_dir:\n%s", buf.String())
	}
}
