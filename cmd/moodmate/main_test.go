package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "moodmate dev\n", out)
}

func TestConfig_MasksSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moodmate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  gemini_api_key: AIzaSecretValue123\nstorage:\n  ephemeral: true\n"), 0o600))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ephemeral: true")
	assert.NotContains(t, out, "AIzaSecretValue123")
}

func TestConfig_MissingFile(t *testing.T) {
	_, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "config"))
}
