package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
	}
	if cfg.Timing.MenuActionDelay.Duration() != 60*time.Millisecond {
		t.Errorf("MenuActionDelay = %s, want 60ms", cfg.Timing.MenuActionDelay.Duration())
	}
	if cfg.Timing.RenderSettleDelay.Duration() != 500*time.Millisecond {
		t.Errorf("RenderSettleDelay = %s, want 500ms", cfg.Timing.RenderSettleDelay.Duration())
	}
	if cfg.Timing.DragThreshold.Duration() != 100*time.Millisecond {
		t.Errorf("DragThreshold = %s, want 100ms", cfg.Timing.DragThreshold.Duration())
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.View.OriginX = 5
	cfg.Timing.ScrollDuration = Duration(2 * time.Second)

	opts := cfg.Options()
	if opts.Origin.X != 5 || opts.Origin.Y != 20 {
		t.Errorf("Origin = %+v, want (5, 20)", opts.Origin)
	}
	if opts.ScrollDuration != 2*time.Second {
		t.Errorf("ScrollDuration = %s, want 2s", opts.ScrollDuration)
	}
	if opts.ZoomStep != 0.1 {
		t.Errorf("ZoomStep = %g, want 0.1", opts.ZoomStep)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "nested", name)

			cfg := DefaultConfig()
			cfg.Host.File = "flows/village.yaml"
			cfg.Timing.MenuActionDelay = Duration(75 * time.Millisecond)
			cfg.View.ShowEventNames = true

			if err := cfg.Save(configPath); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			loaded, path, err := LoadFromPath(configPath)
			if err != nil {
				t.Fatalf("LoadFromPath() error: %v", err)
			}
			if path != configPath {
				t.Errorf("path = %s, want %s", path, configPath)
			}
			if loaded.Host.File != "flows/village.yaml" {
				t.Errorf("Host.File = %s, want flows/village.yaml", loaded.Host.File)
			}
			if loaded.Timing.MenuActionDelay.Duration() != 75*time.Millisecond {
				t.Errorf("MenuActionDelay = %s, want 75ms", loaded.Timing.MenuActionDelay.Duration())
			}
			if !loaded.Flags().ShowEventNames {
				t.Error("ShowEventNames should survive a round trip")
			}
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"config.yaml", "host:\n  file: flow.json\ntiming:\n  drag_threshold: 150ms\n"},
		{"config.toml", "[host]\nfile = \"flow.json\"\n\n[timing]\ndrag_threshold = \"150ms\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, _, err := LoadFromPath(path)
			if err != nil {
				t.Fatalf("LoadFromPath() error: %v", err)
			}
			if cfg.Host.File != "flow.json" {
				t.Errorf("Host.File = %s, want flow.json", cfg.Host.File)
			}
			if cfg.Timing.DragThreshold.Duration() != 150*time.Millisecond {
				t.Errorf("DragThreshold = %s, want 150ms", cfg.Timing.DragThreshold.Duration())
			}
			if cfg.Timing.MenuActionDelay.Duration() != 60*time.Millisecond {
				t.Errorf("MenuActionDelay = %s, want default 60ms", cfg.Timing.MenuActionDelay.Duration())
			}
			if cfg.Server.Addr != ":3000" {
				t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
			}
			if cfg.Version != 1 {
				t.Errorf("Version = %d, want 1", cfg.Version)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("timing:\n  drag_threshold: soon\n"), 0644)
	if _, _, err := LoadFromPath(bad); err == nil {
		t.Error("expected error for invalid duration")
	}

	badTOML := filepath.Join(dir, "bad.toml")
	os.WriteFile(badTOML, []byte("[timing\n"), 0644)
	if _, _, err := LoadFromPath(badTOML); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv(EnvConfigPath, "")

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// TOML in the working directory
	if err := DefaultConfig().Save(filepath.Join(tmpDir, ConfigFileNameTOML)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileNameTOML {
		t.Errorf("FindConfigPath() = %q, want %s", found, ConfigFileNameTOML)
	}

	// YAML wins over TOML
	if err := DefaultConfig().Save(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %q, want %s", found, ConfigFileName)
	}

	// Explicit path wins when it exists
	explicit := filepath.Join(tmpDir, "elsewhere.toml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %q, want %q", found, explicit)
	}

	// Missing explicit path falls back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}
}

func TestFindConfigPathXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdg := filepath.Join(tmpDir, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv(EnvConfigPath, "")

	oldWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(oldWd)

	want := filepath.Join(xdg, ConfigDirName, "config.toml")
	if err := DefaultConfig().Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); found != want {
		t.Errorf("FindConfigPath() = %q, want %q", found, want)
	}
	if got := DefaultConfigPath(); got != filepath.Join(xdg, ConfigDirName, "config.yaml") {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}

	var parsed Duration
	if err := parsed.UnmarshalText([]byte("60ms")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if parsed.Duration() != 60*time.Millisecond {
		t.Errorf("UnmarshalText() = %s, want 60ms", parsed.Duration())
	}
}
