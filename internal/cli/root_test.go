package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtrack/internal/testutil"
)

// cliResult is the outcome of one CLI invocation.
type cliResult struct {
	Stdout string
	Stderr string
	Code   int
}

// newTestDB returns a fresh database path and isolates the test from any
// config file in the user's home directory.
func newTestDB(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return testutil.TempDBPath(t)
}

// runCLI executes one invocation against dbPath with a clock frozen at
// 2025-03-14 and trace ids starting at test-trace-1.
func runCLI(t *testing.T, dbPath string, args ...string) cliResult {
	t.Helper()

	opts := &RootOptions{
		Clock:     testutil.NewFixedClock(2025, time.March, 14),
		TraceIDs:  testutil.NewSequentialTraceGenerator(""),
		LogOutput: io.Discard,
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := ExecuteWithOptions(opts, append([]string{"--db", dbPath}, args...), stdout, stderr)
	assert.Nil(t, opts.Stores, "database should be closed after the command")

	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Code: code}
}

// mustRun executes a command that is expected to succeed.
func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	res := runCLI(t, dbPath, args...)
	require.Equal(t, ExitSuccess, res.Code, "args %v\nstdout: %s\nstderr: %s", args, res.Stdout, res.Stderr)
	return res.Stdout
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "jobtrack", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"db", "init"}, {"db", "drop"}, {"db", "reset"}, {"db", "seed"},
		{"company", "list"}, {"company", "show"}, {"company", "create"}, {"company", "update"}, {"company", "delete"},
		{"job", "list"}, {"job", "show"}, {"job", "create"}, {"job", "update"}, {"job", "delete"}, {"job", "tags"},
		{"tag", "list"}, {"tag", "create"}, {"tag", "delete"}, {"tag", "assign"}, {"tag", "remove"}, {"tag", "jobs"},
	}

	for _, path := range commands {
		t.Run(filepath.Join(path...), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "jobtrack.db", dbFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCreateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	jobCreate, _, err := cmd.Find([]string{"job", "create"})
	require.NoError(t, err)
	for _, name := range []string{"title", "company", "company-id", "create-company", "description", "applied", "follow-up", "status"} {
		assert.NotNil(t, jobCreate.Flags().Lookup(name), "job create should have --%s", name)
	}
	assert.Equal(t, "applied", jobCreate.Flags().Lookup("status").DefValue)

	tagCreate, _, err := cmd.Find([]string{"tag", "create"})
	require.NoError(t, err)
	assert.NotNil(t, tagCreate.Flags().Lookup("name"))
	assert.NotNil(t, tagCreate.Flags().Lookup("type"))

	seedCmd, _, err := cmd.Find([]string{"db", "seed"})
	require.NoError(t, err)
	fileFlag := seedCmd.Flags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
	assert.NotNil(t, seedCmd.Flags().Lookup("reset"))
}

func TestExecute_InvalidFormat(t *testing.T) {
	db := newTestDB(t)

	res := runCLI(t, db, "--format", "xml", "company", "list")
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Equal(t, "Error [E006]: invalid format \"xml\": must be one of [text json]\n", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestExecute_UnknownCommand(t *testing.T) {
	db := newTestDB(t)

	res := runCLI(t, db, "frobnicate")
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Contains(t, res.Stderr, "unknown command")
}

func TestExecute_MissingRequiredFlag(t *testing.T) {
	db := newTestDB(t)

	res := runCLI(t, db, "company", "create")
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Contains(t, res.Stderr, `required flag(s) "name" not set`)
}

func TestExecute_ConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "jobtrack.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db: "+dbPath+"\nformat: json\n"), 0o644))

	opts := &RootOptions{
		TraceIDs:  testutil.NewSequentialTraceGenerator("cfg"),
		LogOutput: io.Discard,
	}
	stdout := &bytes.Buffer{}
	code := ExecuteWithOptions(opts, []string{"--config", cfgPath, "db", "init"}, stdout, io.Discard)

	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, `{"status":"ok","data":{"database":"`+dbPath+`"},"trace_id":"cfg-1"}`+"\n", stdout.String())
	assert.FileExists(t, dbPath)
}

func TestExecute_MissingConfigFile(t *testing.T) {
	db := newTestDB(t)

	res := runCLI(t, db, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "db", "init")
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Contains(t, res.Stdout, "Error [E008]")
}

func TestExecute_VerboseLogsToStderr(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	db := testutil.TempDBPath(t)

	logs := &bytes.Buffer{}
	opts := &RootOptions{
		TraceIDs:  testutil.NewSequentialTraceGenerator(""),
		LogOutput: logs,
	}
	stdout := &bytes.Buffer{}
	code := ExecuteWithOptions(opts, []string{"--db", db, "-v", "--format", "json", "tag", "create", "--name", "remote", "--type", "location"}, stdout, io.Discard)

	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, `{"status":"ok","data":{"id":1,"name":"remote","tag_type":"location"},"trace_id":"test-trace-1"}`+"\n", stdout.String())
	assert.Contains(t, logs.String(), "created tag")
	assert.Contains(t, logs.String(), "test-trace-1")
	assert.Contains(t, logs.String(), "DEBUG")
}
