package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommandWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	var buf bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"init"})

	require.NoError(t, root.Execute())
	assert.FileExists(t, path)
	assert.Contains(t, buf.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging:")
}

func TestInitCommandForceOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0644))
	cfgFile = path
	initForce = true
	t.Cleanup(func() { cfgFile = ""; initForce = false })

	var buf bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"init", "--force"})

	require.NoError(t, root.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging:")
}
