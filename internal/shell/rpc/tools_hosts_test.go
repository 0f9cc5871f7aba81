package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/dockrelay/internal/shell/docker"
	"github.com/artpar/dockrelay/internal/shell/history"
)

// =============================================================================
// Docker Host Tool Tests
// =============================================================================

func TestSetDockerHost(t *testing.T) {
	hosts := docker.NewHostOverride("")
	s, _ := setupTestServer(t, Deps{Hosts: hosts})

	result := call(t, s, "set_docker_host", map[string]any{"host": "ssh://deploy@build-box"})

	require.False(t, result.IsError, resultText(t, result))
	assert.Equal(t, "docker commands now target ssh://deploy@build-box", resultText(t, result))
	assert.Equal(t, "ssh://deploy@build-box", hosts.Get())
}

func TestSetDockerHost_Invalid(t *testing.T) {
	hosts := docker.NewHostOverride("tcp://10.0.0.5:2376")
	s, _ := setupTestServer(t, Deps{Hosts: hosts})

	result := call(t, s, "set_docker_host", map[string]any{"host": "http://nowhere"})
	assert.True(t, result.IsError)
	assert.Equal(t, "tcp://10.0.0.5:2376", hosts.Get())

	result = call(t, s, "set_docker_host", map[string]any{"host": " "})
	assert.True(t, result.IsError)
	assert.Equal(t, "missing required argument: host", resultText(t, result))
}

func TestSetDockerHost_Probe(t *testing.T) {
	prober := &fakeProber{reachable: map[string]bool{"tcp://up:2375": true}}
	hosts := docker.NewHostOverride("")
	s, _ := setupTestServer(t, Deps{Hosts: hosts, Prober: prober})

	result := call(t, s, "set_docker_host", map[string]any{"host": "tcp://down:2375", "probe": true})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not reachable")
	assert.Contains(t, resultText(t, result), "left unchanged")
	assert.Empty(t, hosts.Get())

	result = call(t, s, "set_docker_host", map[string]any{"host": "tcp://up:2375", "probe": true})
	assert.False(t, result.IsError)
	assert.Equal(t, "tcp://up:2375", hosts.Get())
	assert.Equal(t, []string{"tcp://down:2375", "tcp://up:2375"}, prober.probed)
}

func TestSetDockerHost_AppliesToLaterCommands(t *testing.T) {
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s, _ := setupTestServer(t, Deps{History: store})
	call(t, s, "set_docker_host", map[string]any{"host": "tcp://10.0.0.5:2376"})
	call(t, s, "list_containers", nil)

	entries, err := store.List(t.Context(), history.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tcp://10.0.0.5:2376", entries[0].Host)
}

func TestGetAndClearDockerHost(t *testing.T) {
	t.Setenv("DOCKER_HOST", "")
	hosts := docker.NewHostOverride("unix:///var/run/docker.sock")
	s, _ := setupTestServer(t, Deps{Hosts: hosts})

	assert.Equal(t, "docker host: unix:///var/run/docker.sock", resultText(t, call(t, s, "get_docker_host", nil)))

	result := call(t, s, "clear_docker_host", nil)
	assert.Equal(t, "docker host override unix:///var/run/docker.sock cleared", resultText(t, result))
	assert.Equal(t, "no override set; using the docker CLI default", resultText(t, call(t, s, "get_docker_host", nil)))
	assert.Equal(t, "no docker host override was set", resultText(t, call(t, s, "clear_docker_host", nil)))

	t.Setenv("DOCKER_HOST", "tcp://env-host:2375")
	assert.Contains(t, resultText(t, call(t, s, "get_docker_host", nil)), "tcp://env-host:2375")
}

func TestProbeDockerHost(t *testing.T) {
	prober := &fakeProber{reachable: map[string]bool{"tcp://up:2375": true}}
	s, _ := setupTestServer(t, Deps{Hosts: docker.NewHostOverride("tcp://up:2375"), Prober: prober})

	result := call(t, s, "probe_docker_host", nil)
	assert.False(t, result.IsError)
	assert.Equal(t, "tcp://up:2375 is reachable: docker 28.5.2 (API 1.51) on linux", resultText(t, result))

	result = call(t, s, "probe_docker_host", map[string]any{"host": "tcp://down:2375"})
	assert.True(t, result.IsError)
	assert.Equal(t, "tcp://down:2375 is not reachable: connection refused", resultText(t, result))
}

func TestProbeDockerHost_NoProber(t *testing.T) {
	s, _ := setupTestServer(t, Deps{})
	result := call(t, s, "probe_docker_host", nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "host probing is not available", resultText(t, result))
}

// =============================================================================
// History Tool Tests
// =============================================================================

func TestCommandHistory_Disabled(t *testing.T) {
	s, _ := setupTestServer(t, Deps{})
	result := call(t, s, "command_history", nil)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "command history is disabled")
}

func TestCommandHistory(t *testing.T) {
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s, runner := setupTestServer(t, Deps{History: store})
	runner.fail("docker stop ghost", "No such container: ghost\n", 1)

	assert.Equal(t, "no commands recorded yet", resultText(t, call(t, s, "command_history", nil)))

	call(t, s, "docker_natural_language", map[string]any{"phrase": "list images"})
	time.Sleep(2 * time.Millisecond)
	call(t, s, "stop_container", map[string]any{"container": "ghost"})
	time.Sleep(2 * time.Millisecond)
	call(t, s, "stop_container", map[string]any{"container": ""})

	entries, err := store.List(t.Context(), history.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2, "a missing argument is never recorded")
	assert.Equal(t, "docker stop ghost", entries[0].Command)
	assert.Equal(t, 1, entries[0].ExitCode)
	assert.NotEmpty(t, entries[0].Error)
	assert.Equal(t, "list images", entries[1].Phrase)
	assert.Equal(t, "ok\n", entries[1].Output)

	text := resultText(t, call(t, s, "command_history", map[string]any{"limit": 1.0}))
	assert.Contains(t, text, "exit=1  docker stop ghost")
	assert.NotContains(t, text, "docker images")

	text = resultText(t, call(t, s, "command_history", map[string]any{"limit": 1.0, "offset": 1.0}))
	assert.Contains(t, text, "docker images")
	assert.NotContains(t, text, "docker stop ghost")

	text = resultText(t, call(t, s, "command_history", map[string]any{"tool": "docker_natural_language"}))
	assert.Contains(t, text, `docker images  ("list images")`)
}
