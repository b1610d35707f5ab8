package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a cookie file in dir with no config file.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--file", filepath.Join(dir, "cookies.csv"),
	}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd)
		assert.Equal(t, "crumbs", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has file flag", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		flag := cmd.PersistentFlags().Lookup("file")
		require.NotNil(t, flag)
		assert.Equal(t, "f", flag.Shorthand)
	})

	t.Run("has config and log-level flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
		assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	})

	for _, name := range []string{"set", "get", "list", "rm", "clear", "import", "fetch"} {
		t.Run("has "+name+" subcommand", func(t *testing.T) {
			cmd := NewRootCommand("1.0.0")
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Contains(t, sub.Use, name)
		})
	}
}

func TestRootOptions_Open(t *testing.T) {
	t.Run("rejects non-csv file", func(t *testing.T) {
		dir := t.TempDir()
		cmd := NewRootCommand("test")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{
			"--config", filepath.Join(dir, "absent.yaml"),
			"--file", filepath.Join(dir, "cookies.txt"),
			"list",
		})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extension")
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		_, err := execute(t, t.TempDir(), "--log-level", "loud", "list")
		assert.Error(t, err)
	})
}
