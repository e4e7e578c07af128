package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the search paths at empty directories and clears the
// environment variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"JOBTRACK_DB", "JOBTRACK_LOG_LEVEL", "JOBTRACK_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "", "")
	fs.String("format", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "jobtrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, Config{DBPath: DefaultDBPath, LogLevel: DefaultLogLevel, Format: DefaultFormat}, cfg)
}

func TestLoad_UnsetFlagsKeepDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultFormat, cfg.Format)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "db: from-file.db\nlog_level: info\nformat: json\n")

	// File over defaults.
	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, filepath.Base(path), filepath.Base(cfg.File))

	// Environment over file.
	t.Setenv("JOBTRACK_DB", "from-env.db")
	t.Setenv("JOBTRACK_LOG_LEVEL", "DEBUG")
	cfg, err = Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Flags over environment.
	cfg, err = Load(newFlags(t, "--db", "from-flag.db", "--format", "text"), "")
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.DBPath)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_HomeConfigDir(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "jobtrack")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeConfig(t, dir, "db: home.db\n")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "home.db", cfg.DBPath)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	other := t.TempDir()
	path := filepath.Join(other, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: custom.db\n"), 0644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		file    string
		wantErr string
	}{
		{name: "malformed file", content: "db: [unterminated\n", wantErr: "failed to read config file"},
		{name: "bad format", content: "format: xml\n", wantErr: `format "xml" must be text or json`},
		{name: "empty db", content: "db: \"  \"\n", wantErr: "db must not be empty"},
		{name: "missing explicit file", file: "missing.yaml", wantErr: "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			file := ""
			if tt.file != "" {
				file = filepath.Join(dir, tt.file)
			} else {
				writeConfig(t, dir, tt.content)
			}

			_, err := Load(nil, file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
