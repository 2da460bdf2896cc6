package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRootCmd(t *testing.T) {
	root := GetRootCmd()
	assert.Equal(t, "fastpasta", root.Use)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["version"])
	assert.True(t, names["init"])
	assert.True(t, names["check"])
	assert.True(t, names["view"])
	assert.True(t, names["history"])
	assert.True(t, names["schema"])
}

func TestVersionCommand(t *testing.T) {
	Version, Commit, Date = "1.2.3", "abcdef", "2026-01-01"

	var buf bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	assert.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "1.2.3")
	assert.Contains(t, buf.String(), "abcdef")
}
