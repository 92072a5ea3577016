package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/internal/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(afero.NewMemMapFs()), "")
	require.NoError(t, err)

	assert.Equal(t, buffer.LineEndingAuto, cfg.LineEnding())
	assert.False(t, cfg.Watch)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, logging.LevelInfo, cfg.Logging().Level)
}

func TestLoad_ExplicitFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/nplmerge.yaml", []byte(`
line_ending: crlf
watch: true
log:
  level: debug
  json: true
telemetry:
  enabled: false
`), 0o644))

	cfg, err := Load(NewViper(fs), "/etc/nplmerge.yaml")
	require.NoError(t, err)

	assert.Equal(t, buffer.LineEndingCRLF, cfg.LineEnding())
	assert.True(t, cfg.Watch)
	assert.Equal(t, logging.Config{Level: logging.LevelDebug, JSON: true, Service: "nplmerge"}, cfg.Logging())
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(afero.NewMemMapFs()), "/nope.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("line_ending: lf\nlog:\n  level: warn\n"), 0o644))
	t.Setenv("NPLMERGE_LINE_ENDING", "cr")
	t.Setenv("NPLMERGE_LOG_LEVEL", "error")

	cfg, err := Load(NewViper(fs), "/c.yaml")
	require.NoError(t, err)
	assert.Equal(t, buffer.LineEndingCR, cfg.LineEnding())
	assert.Equal(t, logging.LevelError, cfg.Logging().Level)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.yaml", []byte("line_ending: nel\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/b.yaml", []byte("log:\n  level: loud\n"), 0o644))

	_, err := Load(NewViper(fs), "/a.yaml")
	assert.ErrorContains(t, err, "line_ending")

	_, err = Load(NewViper(fs), "/b.yaml")
	assert.ErrorContains(t, err, "log.level")
}
