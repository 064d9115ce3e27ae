package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilnbuild/kiln/internal/adapters/config"
	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, config.DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_FullPlan(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, `version: "1"
settings:
  jobs: 4
  keepGoing: true
  cache: /tmp/kiln-cache
vars:
  threshold: "0.5"
targets:
  model:
    cmd: fit clean
    trigger: always
  clean:
    cmd: scrub raw.csv
    inputs: [raw.csv]
    outputs: [clean.csv]
`)

	loader := &config.FilePlanLoader{}
	plan, err := loader.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, plan.Settings.Jobs)
	assert.True(t, plan.Settings.KeepGoing)
	assert.Equal(t, "/tmp/kiln-cache", plan.Settings.CacheDir)
	assert.Equal(t, map[string]string{"threshold": "0.5"}, plan.Vars)

	// Targets come out sorted by name regardless of file order.
	require.Len(t, plan.Targets, 2)
	assert.Equal(t, "clean", plan.Targets[0].Name)
	assert.Equal(t, "scrub raw.csv", plan.Targets[0].Command)
	assert.Equal(t, []string{"raw.csv"}, plan.Targets[0].Inputs)
	assert.Equal(t, []string{"clean.csv"}, plan.Targets[0].Outputs)
	assert.Equal(t, domain.Trigger(""), plan.Targets[0].Trigger)

	assert.Equal(t, "model", plan.Targets[1].Name)
	assert.Equal(t, domain.TriggerAlways, plan.Targets[1].Trigger)
}

func TestLoad_InvalidTrigger(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, `targets:
  a:
    cmd: echo
    trigger: sometimes
`)

	loader := &config.FilePlanLoader{}
	_, err := loader.Load(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidTrigger)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := &config.FilePlanLoader{}
	_, err := loader.Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "targets: [not a map")

	loader := &config.FilePlanLoader{}
	_, err := loader.Load(dir)
	assert.Error(t, err)
}

func TestLoad_CustomFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  a:\n    cmd: echo\n"), 0o600))

	loader := &config.FilePlanLoader{Filename: "other.yaml"}
	plan, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, plan.Targets, 1)
	assert.Equal(t, "a", plan.Targets[0].Name)
}
