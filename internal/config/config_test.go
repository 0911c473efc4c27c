package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "data/boxoffice.csv", s.Data.Path)
	assert.Equal(t, 14, s.Window.Days)
	assert.Equal(t, "v5", s.Dashboard.Variant)
	assert.Equal(t, []string{"csv", "json", "html"}, s.Export.Formats)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 5*time.Minute, s.JobTimeout())
	assert.Empty(t, s.Data.DefaultMovies)
	assert.Equal(t, []string{"20226411", "20204548", "20172742"}, s.Data.DefaultCodes)
	assert.Equal(t, s.Data.DefaultCodes, s.PipelineOptions().DefaultCodes)
}

func TestYAMLFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "boxoffice.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
data:
  path: /srv/boxoffice.xlsx
  default_movies: [Alpha, Beta]
window:
  days: 7
dashboard:
  variant: v3
export:
  formats: [csv, parquet]
`), 0o644))
	t.Setenv("BOXOFFICE_WINDOW_DAYS", "21")

	s, err := Load(New(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "/srv/boxoffice.xlsx", s.Data.Path)
	assert.Equal(t, []string{"Alpha", "Beta"}, s.Data.DefaultMovies)
	assert.Equal(t, 21, s.Window.Days)
	assert.Equal(t, "v3", s.Dashboard.Variant)
	assert.Equal(t, []string{"csv", "parquet"}, s.Export.Formats)

	opts := s.PipelineOptions()
	assert.Equal(t, 21, opts.WindowDays)
	assert.Equal(t, "v3", opts.DefaultVariant)
}

func TestFlagsTakePrecedence(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BOXOFFICE_DASHBOARD_VARIANT", "v2")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("variant", "", "")
	fs.String("data", "", "")
	fs.Int("unrelated", 0, "")
	require.NoError(t, fs.Parse([]string{"--variant", "v4"}))

	v := New()
	require.NoError(t, BindFlags(v, fs))
	s, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "v4", s.Dashboard.Variant)
	// unset flags fall through to defaults
	assert.Equal(t, "data/boxoffice.csv", s.Data.Path)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	s, err := Load(New(), "")
	require.NoError(t, err)

	s.Dashboard.Variant = "v9"
	s.Export.Formats = []string{"xml"}
	s.Window.Days = -1
	s.Server.JobTimeout = "soon"

	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.variant")
	assert.Contains(t, err.Error(), "export.formats")
	assert.Contains(t, err.Error(), "window.days")
	assert.Contains(t, err.Error(), "server.job_timeout")
}
