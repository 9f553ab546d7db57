package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("BEDIT_CONFIG_HOME", "/tmp/bedit-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/bedit-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/bedit-config")
	}

	t.Setenv("BEDIT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/bedit" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/bedit")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BEDIT_CONFIG_HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.SlashTrigger != "/" {
		t.Fatalf("SlashTrigger = %q, want %q", cfg.Editor.SlashTrigger, "/")
	}
	if cfg.Editor.TableRows != 3 || cfg.Editor.TableColumns != 3 {
		t.Fatalf("table defaults = %dx%d, want 3x3", cfg.Editor.TableRows, cfg.Editor.TableColumns)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BEDIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
slash-trigger = "\\"
hover-debounce-ms = 250
table-columns = 4

[theme]
foreground = "#111111"
drop-indicator = "#ff0000"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.SlashTrigger != `\` {
		t.Fatalf("SlashTrigger = %q, want backslash", cfg.Editor.SlashTrigger)
	}
	if cfg.Editor.HoverDebounceMs != 250 {
		t.Fatalf("HoverDebounceMs = %d, want 250", cfg.Editor.HoverDebounceMs)
	}
	if cfg.Editor.TableColumns != 4 {
		t.Fatalf("TableColumns = %d, want 4", cfg.Editor.TableColumns)
	}
	if cfg.Editor.TableRows != 3 {
		t.Fatalf("TableRows = %d, want default 3", cfg.Editor.TableRows)
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.DropIndicator != "#ff0000" {
		t.Fatalf("DropIndicator = %q, want %q", cfg.Theme.DropIndicator, "#ff0000")
	}
	if cfg.Theme.Background != "#0A0E14" {
		t.Fatalf("Background = %q, want default", cfg.Theme.Background)
	}
}
