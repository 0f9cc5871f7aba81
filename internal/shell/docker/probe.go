package docker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/client"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ProbeResult reports whether a daemon endpoint answered.
type ProbeResult struct {
	Host          string `json:"host"`
	Reachable     bool   `json:"reachable"`
	ServerVersion string `json:"server_version,omitempty"`
	APIVersion    string `json:"api_version,omitempty"`
	OS            string `json:"os,omitempty"`
	Error         string `json:"error,omitempty"`
}

// String renders the result as one line for a human reader.
func (r ProbeResult) String() string {
	host := r.Host
	if host == "" {
		host = "default docker host"
	}
	if !r.Reachable {
		return fmt.Sprintf("%s is not reachable: %s", host, r.Error)
	}
	s := fmt.Sprintf("%s is reachable: docker %s (API %s)", host, r.ServerVersion, r.APIVersion)
	if r.OS != "" {
		s += " on " + r.OS
	}
	return s
}

// ProberConfig configures a Prober.
type ProberConfig struct {
	Timeout time.Duration // Default: 10 seconds
	// RemoteBinary is the docker executable on ssh:// hosts. Default: docker
	RemoteBinary string
	// KnownHostsFile verifies ssh host keys. Default: ~/.ssh/known_hosts when present
	KnownHostsFile string
}

// Prober checks that a daemon endpoint answers before it is used.
// tcp, unix and npipe endpoints are pinged through the Docker SDK; ssh
// endpoints are reached with the keys held by the local SSH agent.
type Prober struct {
	timeout      time.Duration
	remoteBinary string
	knownHosts   string
	logger       *slog.Logger
}

// NewProber creates a prober from cfg.
func NewProber(cfg ProberConfig, logger *slog.Logger) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RemoteBinary == "" {
		cfg.RemoteBinary = "docker"
	}
	if cfg.KnownHostsFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.KnownHostsFile = filepath.Join(home, ".ssh", "known_hosts")
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		timeout:      cfg.Timeout,
		remoteBinary: cfg.RemoteBinary,
		knownHosts:   cfg.KnownHostsFile,
		logger:       logger.With("component", "docker_prober"),
	}
}

// Probe contacts host. An empty host probes the endpoint the environment
// selects. Failures are reported in the result, never returned.
func (p *Prober) Probe(ctx context.Context, host string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result := ProbeResult{Host: host}
	var err error
	if strings.HasPrefix(host, "ssh://") {
		err = p.probeSSH(ctx, host, &result)
	} else {
		err = p.probeAPI(ctx, host, &result)
	}

	if err != nil {
		result.Error = err.Error()
		p.logger.Warn("docker host probe failed", "host", host, "error", err)
		return result
	}
	result.Reachable = true
	p.logger.Info("docker host probed", "host", host, "version", result.ServerVersion)
	return result
}

// probeAPI pings the daemon over its HTTP API.
func (p *Prober) probeAPI(ctx context.Context, host string, result *ProbeResult) error {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		if err := ValidateHost(host); err != nil {
			return err
		}
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return NewDockerError("Probe", host, fmt.Sprintf("failed to create client: %v", err), ErrConnectionFailed)
	}
	defer cli.Close()

	ping, err := cli.Ping(ctx)
	if err != nil {
		return NewDockerError("Probe", host, fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	result.APIVersion = ping.APIVersion
	result.OS = ping.OSType

	version, err := cli.ServerVersion(ctx)
	if err != nil {
		return NewDockerError("Probe", host, fmt.Sprintf("failed to read server version: %v", err), ErrConnectionFailed)
	}
	result.ServerVersion = version.Version
	result.APIVersion = version.APIVersion
	result.OS = version.Os
	return nil
}

// =============================================================================
// SSH Endpoints
// =============================================================================

// probeSSH dials the host and runs "docker version" over a session.
func (p *Prober) probeSSH(ctx context.Context, host string, result *ProbeResult) error {
	if err := ValidateHost(host); err != nil {
		return err
	}
	u, _ := url.Parse(host)

	config, closeAgent, err := p.sshConfig(u)
	if err != nil {
		return err
	}
	defer closeAgent()

	port := u.Port()
	if port == "" {
		port = "22"
	}
	addr := net.JoinHostPort(u.Hostname(), port)

	sshClient, err := dialSSH(ctx, addr, config)
	if err != nil {
		return NewDockerError("Probe", host, fmt.Sprintf("SSH dial %s: %v", addr, err), ErrConnectionFailed)
	}
	defer sshClient.Close()

	session, err := sshClient.NewSession()
	if err != nil {
		return NewDockerError("Probe", host, fmt.Sprintf("create SSH session: %v", err), ErrConnectionFailed)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(p.remoteBinary + ` version --format '{{.Server.Version}} {{.Server.APIVersion}} {{.Server.Os}}'`)
	}()

	select {
	case <-ctx.Done():
		return NewDockerError("Probe", host, "timed out waiting for docker version", ErrTimeout)
	case err := <-done:
		if err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return NewDockerError("Probe", host, "docker version failed: "+msg, ErrConnectionFailed)
		}
	}

	fields := strings.Fields(stdout.String())
	if len(fields) < 2 {
		return NewDockerError("Probe", host, fmt.Sprintf("unexpected docker version output %q", stdout.String()), ErrConnectionFailed)
	}
	result.ServerVersion = fields[0]
	result.APIVersion = fields[1]
	if len(fields) > 2 {
		result.OS = fields[2]
	}
	return nil
}

// sshConfig builds a client config authenticated by the SSH agent.
func (p *Prober) sshConfig(u *url.URL) (*ssh.ClientConfig, func(), error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, NewDockerError("Probe", u.String(), "SSH_AUTH_SOCK is not set, an SSH agent is required", ErrConnectionFailed)
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, NewDockerError("Probe", u.String(), fmt.Sprintf("connect to SSH agent: %v", err), ErrConnectionFailed)
	}

	username := u.User.Username()
	if username == "" {
		if current, err := user.Current(); err == nil {
			username = current.Username
		}
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if p.knownHosts != "" {
		if _, err := os.Stat(p.knownHosts); err == nil {
			cb, err := knownhosts.New(p.knownHosts)
			if err != nil {
				conn.Close()
				return nil, nil, NewDockerError("Probe", u.String(), fmt.Sprintf("read known hosts: %v", err), ErrConnectionFailed)
			}
			hostKeyCallback = cb
		}
	}

	config := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeysCallback(agent.NewClient(conn).Signers)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         p.timeout,
	}
	return config, func() { conn.Close() }, nil
}

// dialSSH dials addr, giving up when ctx is done.
func dialSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}
