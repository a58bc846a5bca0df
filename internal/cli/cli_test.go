package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/cardcheck/internal/config"
)

// resetFlags puts every flag in the command tree back to its default and
// clears its Changed mark.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()

	resetFlags(t, rootCmd)
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags(t, rootCmd)
		cfg = nil
	})

	code := Execute()
	return code, out.String()
}

func TestExecuteStartsFromDefaultFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("strict = true\n"), 0600))

	code, _ := execute(t, "--config", path, "config", "init", "--force")
	require.Equal(t, 0, code)
	assert.True(t, configForce)

	// a later command without flags must not inherit the previous ones
	resetFlags(t, rootCmd)
	assert.False(t, configForce)
	assert.False(t, watchNow)
	assert.Empty(t, configFile)
	assert.False(t, rootCmd.PersistentFlags().Lookup("config").Changed)
	assert.False(t, configInitCmd.Flags().Lookup("force").Changed)
}

func TestConfigPathHonoursFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardcheck.toml")

	code, out := execute(t, "--config", path, "config", "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, path+"\n", out)
}

func TestConfigInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.toml")

	code, out := execute(t, "--config", path, "config", "init")
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)

	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("strict = true\n"), 0600))

	code, _ := execute(t, "--config", path, "config", "init")
	assert.Equal(t, 1, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "strict = true\n", string(data))
}

func writeUnlaunchableConfig(t *testing.T, strict bool) string {
	t.Helper()

	dir := t.TempDir()
	c := config.Default()
	c.Strict = strict
	c.Browser.ExecPath = filepath.Join(dir, "no-such-chrome")
	c.Target.ScreenshotPath = filepath.Join(dir, "test_failure.png")

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, c.SaveFile(path))
	return path
}

func TestRunFailureExitsZeroByDefault(t *testing.T) {
	path := writeUnlaunchableConfig(t, false)

	code, out := execute(t, "--config", path, "run")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "Test failed: "))
}

func TestRunFailureExitsNonZeroWhenStrict(t *testing.T) {
	path := writeUnlaunchableConfig(t, true)

	code, out := execute(t, "--config", path)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(out, "Test failed: "))
}
