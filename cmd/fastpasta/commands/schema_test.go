package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommandPrintsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"schema"})

	require.NoError(t, root.Execute())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "fastpasta Configuration", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "Decode")
	assert.Contains(t, props, "Logging")
	assert.Contains(t, props, "Stats")
}

func TestSchemaCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")

	var buf bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"schema", "--output", path})

	require.NoError(t, root.Execute())
	assert.FileExists(t, path)
	assert.Contains(t, buf.String(), path)
}
