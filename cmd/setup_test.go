package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/splitwatch/internal/config"
)

func TestSetupWritesGlobalConfig(t *testing.T) {
	tmp := isolate(t)

	out, err := executeCommandWithInput(rootCmd, "reviews\njson\n25\n\n\n", "setup")
	require.NoError(t, err)

	path := filepath.Join(tmp, "config", "splitwatch", "config.json")
	assert.Contains(t, out, "Saved "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got config.Config
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "reviews", got.OutputDir)
	assert.Equal(t, "json", got.DefaultFormat)
	assert.Equal(t, 25, got.LinesPerPage)
	assert.Equal(t, 33, got.RefreshMs)
}

func TestSetupInterruptedInput(t *testing.T) {
	isolate(t)
	_, err := executeCommandWithInput(rootCmd, "", "setup")
	assert.ErrorContains(t, err, "setup cancelled")
}

func TestRunNeedsTerminal(t *testing.T) {
	if term.IsTerminal(os.Stdin.Fd()) {
		t.Skip("stdin is a terminal")
	}
	isolate(t)
	_, err := executeCommand(rootCmd, "run")
	assert.ErrorContains(t, err, "interactive terminal")
}
