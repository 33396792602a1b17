package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh root command with args and returns stdout and
// stderr separately.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", t.TempDir()}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "hive", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "deliberate", "run", "export", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, _, err := executeCommand(t, "--log-level", "loud", "version")
	require.ErrorContains(t, err, "unknown log level")
}

func TestDeliberateCommand(t *testing.T) {
	out, _, err := executeCommand(t, "--log-level", "error",
		"deliberate", "--type", "architecture_design", "--input", `{"load":"read heavy"}`, "Pick", "a", "cache")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got["session_id"])
	assert.Equal(t, true, got["consensus_reached"])
	assert.Contains(t, got, "final_decision")
	assert.NotContains(t, got, "discussion")
}

func TestDeliberateCommand_Full(t *testing.T) {
	out, _, err := executeCommand(t, "--log-level", "error", "deliberate", "--full", "Pick a cache")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Pick a cache", got["topic"])
	assert.Contains(t, got, "discussion")
	assert.Contains(t, got, "synthesis")
}

func TestDeliberateCommand_BadInput(t *testing.T) {
	_, _, err := executeCommand(t, "deliberate", "--input", "{not json", "topic")
	require.ErrorContains(t, err, "parse --input")
}

func TestRunCommand(t *testing.T) {
	out, _, err := executeCommand(t, "--log-level", "error", "run", "--name", "todo", "A shared todo list")
	require.NoError(t, err)

	assert.Contains(t, out, "[todo] Project ")
	assert.Contains(t, out, "  ✓ requirements_analysis complete")
	assert.Contains(t, out, "  ✓ final_validation complete")

	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0, "expected a JSON status")
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &st))
	assert.Equal(t, "completed", st["phase"])
	assert.InDelta(t, 100, st["progress"], 1e-9)
}

func TestRunCommand_RequiresRequirements(t *testing.T) {
	_, _, err := executeCommand(t, "run")
	require.ErrorContains(t, err, "requirements are required")
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("HIVE_STORE_DRIVER", "sqlite")
	t.Setenv("HIVE_STORE_DSN", filepath.Join(t.TempDir(), "hive.db"))
}

func TestExportTranscript_PersistsAcrossCommands(t *testing.T) {
	useSQLite(t)

	out, _, err := executeCommand(t, "--log-level", "error", "deliberate", "Pick a cache")
	require.NoError(t, err)
	var decision map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	sessionID, ok := decision["session_id"].(string)
	require.True(t, ok)

	out, _, err = executeCommand(t, "--log-level", "error", "export", "transcript", sessionID)
	require.NoError(t, err)

	var tr struct {
		SessionID string `json:"sessionId"`
		Status    string `json:"status"`
		Phases    []struct {
			Type string `json:"type"`
		} `json:"phases"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tr))
	assert.Equal(t, sessionID, tr.SessionID)
	assert.Equal(t, "completed", tr.Status)
	require.NotEmpty(t, tr.Phases)
	assert.Equal(t, "presentation", tr.Phases[0].Type)
}

func TestExportTasks_Mermaid(t *testing.T) {
	useSQLite(t)

	out, _, err := executeCommand(t, "--log-level", "error", "run", "--name", "todo", "A shared todo list")
	require.NoError(t, err)
	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &st))
	projectID, ok := st["id"].(string)
	require.True(t, ok)

	out, _, err = executeCommand(t, "--log-level", "error", "export", "tasks", projectID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "Setup Project Structure")
	assert.Contains(t, out, "-->")

	_, _, err = executeCommand(t, "export", "tasks", "--format", "svg", projectID)
	require.ErrorContains(t, err, "unknown format")
}

func TestExport_UnknownProjectWithMemoryStore(t *testing.T) {
	_, _, err := executeCommand(t, "export", "tasks", "missing")
	require.Error(t, err)
}
