package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mahasiswa", cmd.Use)
	assert.Contains(t, cmd.Long, "MAHASISWA_*")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"add"},
		{"list"},
		{"update"},
		{"delete"},
		{"export"},
		{"export", "csv"},
		{"export", "doc"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
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

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	for _, name := range []string{"db", "driver", "metrics-file"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "flag %s", name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)

	for _, name := range []string{"where", "param", "columns", "order-by"} {
		assert.NotNil(t, listCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "stringArray", listCmd.Flags().Lookup("param").Value.Type())
}

func TestExportCSVCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	csvCmd, _, err := cmd.Find([]string{"export", "csv"})
	require.NoError(t, err)

	outFlag := csvCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)

	bufFlag := csvCmd.Flags().Lookup("buffer-size")
	require.NotNil(t, bufFlag)
	assert.Equal(t, "-1", bufFlag.DefValue)

	assert.NotNil(t, csvCmd.Flags().Lookup("delimiter"))
	assert.NotNil(t, csvCmd.Flags().Lookup("no-header"))
	assert.NotNil(t, csvCmd.Flags().Lookup("where"))
}

func TestExportDocCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	docCmd, _, err := cmd.Find([]string{"export", "doc"})
	require.NoError(t, err)

	for _, name := range []string{"out", "title", "label", "chunk-size", "where", "columns"} {
		assert.NotNil(t, docCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("text"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
