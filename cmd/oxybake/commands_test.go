package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxybake.toml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	out, err = execute(t, "config", "show", "--config", path, "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "LogLevel:debug")
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxybake.toml")
	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)

	_, err = execute(t, "config", "show", "--config", path, "--log-level", "loud")
	assert.Error(t, err)
}

func TestJobCommandsRequireManifest(t *testing.T) {
	for _, name := range []string{"bake", "reflections", "clear"} {
		_, err := execute(t, name)
		assert.Error(t, err, name)
	}
}

func TestBakeMissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxybake.toml")
	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)

	_, err = execute(t, "bake", "--config", path, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
