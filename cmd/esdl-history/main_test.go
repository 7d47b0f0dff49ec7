package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapeditor/esdlcore/config"
)

const script = `
name: demo
assets:
  - {class: Producer, name: S}
  - {class: Pipe, name: P1}
connections:
  - {from: S-out, to: P1-in}
steps:
  - {op: start, label: rename}
  - {op: set, target: P1, feature: name, value: P1-renamed}
  - {op: step, label: add port}
  - {op: add, target: P1-renamed, feature: port, class: InPort, name: IP2}
  - {op: stop}
  - {op: undo}
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_PrintsHistory(t *testing.T) {
	out, _, err := execute(t, "run", writeFile(t, "edit.yaml", script))
	require.NoError(t, err)

	assert.Contains(t, out, "*  1 set      rename")
	assert.Contains(t, out, "   2 add      add port")
	assert.NotContains(t, out, "esdl_history")
}

func TestRun_Metrics(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "metrics: {enabled: true}\n")
	out, _, err := execute(t, "--config", cfg, "run", writeFile(t, "edit.yaml", script))
	require.NoError(t, err)

	assert.Contains(t, out, `esdl_history_commands_recorded_total{kind="set"} 1`)
	assert.Contains(t, out, `esdl_history_replays_total{direction="undo"} 1`)
}

func TestRun_FailingStepStillPrintsHistory(t *testing.T) {
	bad := script + "  - {op: set, target: ghost, feature: name, value: x}\n"
	out, _, err := execute(t, "run", writeFile(t, "edit.yaml", bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 7")
	assert.Contains(t, out, "rename")
}

func TestRoot_LogLevelOverride(t *testing.T) {
	_, _, err := execute(t, "--log-level", "loud", "run", writeFile(t, "edit.yaml", script))
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, stderr, err := execute(t, "--log-level", "debug", "run", writeFile(t, "edit.yaml", script))
	require.NoError(t, err)
	assert.Contains(t, stderr, "apply step")
}

func TestRoot_MissingConfig(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "run", "x.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_RequiresScript(t *testing.T) {
	_, _, err := execute(t, "run")
	assert.Error(t, err)
}
