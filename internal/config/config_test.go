package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/hive/internal/participant"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Deliberation.DiscussionRounds)
	assert.InDelta(t, 0.8, cfg.Deliberation.ConsensusThreshold, 1e-9)
	assert.Equal(t, 2*time.Minute, cfg.Deliberation.ParticipantTimeout)
	assert.InDelta(t, 0.7, cfg.Completion.Temperature, 1e-9)
	assert.Equal(t, int64(2000), cfg.Completion.MaxTokens)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.ParticipantRoles())
}

func TestLoad_DirectoryWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hive.yaml", `
completion:
  model: gpt-4o
deliberation:
  consensusThreshold: 0.6
  discussionRounds: 5
  participantTimeout: 30s
  roles: [pragmatist, architect, architect]
  profiles:
    - role: security_expert
      specialization: Threat modeling
      systemPrompt: You look for attack surfaces.
store:
  driver: SQLite
  dsn: hive.db
log:
  level: debug
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Completion.Model)
	assert.InDelta(t, 0.7, cfg.Completion.Temperature, 1e-9, "unset keys keep defaults")
	assert.InDelta(t, 0.6, cfg.Deliberation.ConsensusThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Deliberation.DiscussionRounds)
	assert.Equal(t, 3, cfg.Deliberation.ConsensusRounds)
	assert.Equal(t, 30*time.Second, cfg.Deliberation.ParticipantTimeout)
	assert.Equal(t, []participant.Role{"pragmatist", "architect"}, cfg.ParticipantRoles())
	require.Len(t, cfg.Deliberation.Profiles, 1)
	assert.Equal(t, participant.Role("security_expert"), cfg.Deliberation.Profiles[0].Role)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "hive.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_PrefersYMLOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hive.yml", "log:\n  level: warn\n")
	writeFile(t, dir, "hive.yaml", "log:\n  level: error\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yml", "server:\n  addr: :9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hive.yml", "completion:\n  model: gpt-4o\nlog:\n  level: debug\n")

	t.Setenv("HIVE_COMPLETION_MODEL", "local-model")
	t.Setenv("HIVE_COMPLETION_API_KEY", "sk-test")
	t.Setenv("HIVE_DELIBERATION_CONSENSUS_THRESHOLD", "0.9")
	t.Setenv("HIVE_DELIBERATION_CONSENSUS_ROUNDS", "4")
	t.Setenv("HIVE_DELIBERATION_ROLES", "critic,architect")
	t.Setenv("HIVE_TELEMETRY_ENABLED", "true")
	t.Setenv("HIVE_STORE_DRIVER", "sqlite")
	t.Setenv("HIVE_STORE_DSN", ":memory:")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "local-model", cfg.Completion.Model)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level, "file value survives when no env var is set")
	assert.InDelta(t, 0.9, cfg.Deliberation.ConsensusThreshold, 1e-9)
	assert.Equal(t, 4, cfg.Deliberation.ConsensusRounds)
	assert.Equal(t, []participant.Role{"critic", "architect"}, cfg.ParticipantRoles())
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "hive.yml", "store: [unclosed\n")
		_, err := Load(dir)
		require.ErrorContains(t, err, "config: parse")
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("HIVE_DELIBERATION_DISCUSSION_ROUNDS", "many")
		_, err := Load("")
		require.ErrorContains(t, err, "config: parse env")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("HIVE_STORE_DRIVER", "postgres")
		_, err := Load("")
		require.ErrorContains(t, err, "unknown store driver")
	})

	t.Run("sqlite without dsn", func(t *testing.T) {
		t.Setenv("HIVE_STORE_DRIVER", "sqlite")
		_, err := Load("")
		require.ErrorContains(t, err, "store.dsn")
	})

	t.Run("threshold out of range", func(t *testing.T) {
		t.Setenv("HIVE_DELIBERATION_CONSENSUS_THRESHOLD", "1.5")
		_, err := Load("")
		require.ErrorContains(t, err, "consensusThreshold")
	})
}
