package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartDoc = `
name: Gate
entry_points:
  - name: Start
    main: Knock
events:
  - name: Knock
    type: action
    actor: Guest
    action: Knock
    next: Open
  - name: Open
    type: switch
    actor: Gate
    query: IsOpen
    cases:
      - {value: 0, event: Wait}
      - {value: 1, event: Enter}
  - name: Wait
    type: action
    actor: Guest
    action: Wait
  - name: Enter
    type: action
    actor: Guest
    action: Enter
  - name: Lost
    type: action
    actor: Guest
    action: Wander
`

func isolate(t *testing.T) string {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("FLOWVIEW_CONFIG", "")
	return dir
}

func writeChart(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "gate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chartDoc), 0644))
	return path
}

func execute(args ...string) error {
	cmd := rootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestLoadConfigOverrides(t *testing.T) {
	isolate(t)

	cfg, err := loadConfig(&globalFlags{file: "a.yaml", noWatch: true})
	require.NoError(t, err)
	assert.Equal(t, "a.yaml", cfg.Host.File)
	assert.False(t, cfg.Host.Watch)

	cfg, err = loadConfig(&globalFlags{hostURL: "ws://localhost:4000/diagram"})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:4000/diagram", cfg.Host.BridgeURL)
	assert.Empty(t, cfg.Host.File)
	assert.True(t, cfg.Host.Watch)

	_, err = loadConfig(&globalFlags{configPath: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestConnectHostNeedsSource(t *testing.T) {
	isolate(t)

	cfg, err := loadConfig(&globalFlags{})
	require.NoError(t, err)
	_, _, err = connectHost(t.Context(), cfg)
	assert.Error(t, err)

	cfg.Host.File = "gate.yaml"
	cfg.Host.Watch = false
	h, run, err := connectHost(t.Context(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Nil(t, run)
}

func TestInspectCommands(t *testing.T) {
	dir := isolate(t)
	path := writeChart(t, dir)

	assert.NoError(t, execute("render", path))
	assert.NoError(t, execute("render", path, "--connected", "0"))
	assert.Error(t, execute("render", path, "--connected", "42"))

	assert.NoError(t, execute("menu", "1", path))
	assert.NoError(t, execute("menu", "1", path, "--prohibited"))
	assert.Error(t, execute("menu", "42", path))
	assert.Error(t, execute("menu", "x", path))

	assert.NoError(t, execute("components", path))
	assert.NoError(t, execute("export", path, "-o", "yaml"))
	assert.Error(t, execute("export", path, "-o", "xml"))
	assert.Error(t, execute("render"))
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf", "flowview.toml")

	require.NoError(t, execute("config", "init", path))
	assert.FileExists(t, path)
	require.NoError(t, execute("config", "init", path))
	assert.NoError(t, execute("--config", path, "config", "show"))
}
