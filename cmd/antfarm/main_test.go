package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/antfarm/colony"
	"github.com/lixenwraith/antfarm/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "antfarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestHeadlessTickLimit(t *testing.T) {
	path := writeConfig(t, `
run:
  width: 300
  height: 200
simulation:
  agent_count: 10
`)
	stdout, stderr, err := execute(t, "headless", "--config", path, "--seed", "5", "--ticks", "40")
	require.NoError(t, err)

	assert.Contains(t, stdout, "40 ticks")
	assert.Contains(t, stdout, "finished=false")
	assert.Contains(t, stderr, `"msg":"run summary"`)
	assert.Contains(t, stderr, `"ticks":40`)
}

const singleSourceConfig = `
simulation:
  agent_count: 30
  food_count: 1
  tuning:
    food_amount_min: 5
    food_amount_spread: 0
`

func TestHeadlessStopsAtDepletion(t *testing.T) {
	path := writeConfig(t, `
run:
  width: 120
  height: 120
`+singleSourceConfig)
	stdout, stderr, err := execute(t, "headless", "--config", path, "--seed", "11", "--ticks", "200000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "remaining 0")
	assert.Contains(t, stdout, "depleted=true")
	assert.Contains(t, stderr, `"msg":"colony depleted"`)
}

func TestHeadlessRunsToCompletion(t *testing.T) {
	path := writeConfig(t, `
run:
  width: 120
  height: 120
  pause_when_depleted: false
  pause_when_delivered: true
`+singleSourceConfig)
	stdout, _, err := execute(t, "headless", "--config", path, "--seed", "11", "--ticks", "200000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "collected 5/5")
	assert.Contains(t, stdout, "depleted=true, finished=true")
}

func TestInvalidConfigRejected(t *testing.T) {
	path := writeConfig(t, `
simulation:
  evaporation_rate: 2
`)
	_, _, err := execute(t, "headless", "--config", path, "--ticks", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, colony.ErrInvalidConfiguration)
}

func TestConfigDump(t *testing.T) {
	stdout, _, err := execute(t, "config", "dump", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, stdout, "agent_count: 80")
	assert.Contains(t, stdout, "seed: 42")

	path := filepath.Join(t.TempDir(), "out", "antfarm.yaml")
	_, _, err = execute(t, "config", "dump", path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Simulation, loaded.Simulation)
}

func TestServeStopsOnCancel(t *testing.T) {
	a := &app{}
	root := newRootCmd()
	root.SetArgs([]string{"serve"})
	require.NoError(t, a.setup(root))

	a.cfg.Server.Addr = "127.0.0.1:0"
	a.cfg.Run.Width, a.cfg.Run.Height = 200, 150
	a.cfg.Simulation.AgentCount = 5

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := execute(t, "fly")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown command"))
}
