package docker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbe_InvalidHost(t *testing.T) {
	p := NewProber(ProberConfig{Timeout: time.Second}, nil)

	res := p.Probe(context.Background(), "http://nowhere")
	assert.False(t, res.Reachable)
	assert.Contains(t, res.Error, "scheme must be one of")
	assert.Contains(t, res.String(), "http://nowhere is not reachable")
}

func TestProbe_UnreachableTCP(t *testing.T) {
	p := NewProber(ProberConfig{Timeout: 500 * time.Millisecond}, nil)

	// Port 1 on loopback refuses connections.
	res := p.Probe(context.Background(), "tcp://127.0.0.1:1")
	assert.False(t, res.Reachable)
	assert.Contains(t, res.Error, "failed to ping docker")
}

func TestProbe_SSHWithoutAgent(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	p := NewProber(ProberConfig{Timeout: time.Second}, nil)

	res := p.Probe(context.Background(), "ssh://deploy@127.0.0.1")
	assert.False(t, res.Reachable)
	assert.Contains(t, res.Error, "SSH_AUTH_SOCK")
}

func TestProbe_LocalDaemon(t *testing.T) {
	p := NewProber(ProberConfig{Timeout: 2 * time.Second}, nil)

	res := p.Probe(context.Background(), "")
	if !res.Reachable {
		t.Skip("Docker not reachable:", res.Error)
	}
	assert.NotEmpty(t, res.ServerVersion)
	assert.NotEmpty(t, res.APIVersion)
	assert.Contains(t, res.String(), "default docker host is reachable")
}

func TestProbeResult_String(t *testing.T) {
	r := ProbeResult{Host: "tcp://box:2376", Reachable: true, ServerVersion: "28.5.2", APIVersion: "1.51", OS: "linux"}
	assert.Equal(t, "tcp://box:2376 is reachable: docker 28.5.2 (API 1.51) on linux", r.String())
}
