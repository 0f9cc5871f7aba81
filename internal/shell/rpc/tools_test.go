package rpc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Container Tool Tests
// =============================================================================

func TestContainerTools_Templates(t *testing.T) {
	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"list_containers", nil, "docker ps"},
		{"list_containers", map[string]any{"all": true}, "docker ps -a"},
		{"container_logs", map[string]any{"container": "web", "tail": 10.0}, "docker logs --tail 10 web"},
		{"start_container", map[string]any{"container": "web"}, "docker start web"},
		{"stop_container", map[string]any{"container": "web"}, "docker stop web"},
		{"restart_container", map[string]any{"container": "web"}, "docker restart web"},
		{"remove_container", map[string]any{"container": "web", "force": true}, "docker rm -f web"},
		{"inspect_container", map[string]any{"container": "web"}, "docker inspect web"},
		{"container_stats", map[string]any{"container": "web"}, "docker stats --no-stream web"},
		{"container_top", map[string]any{"container": "web"}, "docker top web"},
		{"exec_container", map[string]any{"container": "web", "command": "ls /app"}, "docker exec web ls /app"},
		{"list_images", nil, "docker images"},
		{"pull_image", map[string]any{"image": "redis:7"}, "docker pull redis:7"},
		{"remove_image", map[string]any{"image": "redis:7"}, "docker rmi redis:7"},
		{"list_volumes", nil, "docker volume ls"},
		{"list_networks", nil, "docker network ls"},
		{"project_down", map[string]any{"project": "shop", "remove_volumes": true}, "docker compose -p shop down -v"},
		{"project_status", map[string]any{"project": "shop"}, "docker compose -p shop ps"},
		{"save_image", map[string]any{"image": "nginx", "output": "/tmp/nginx.tar"}, "docker save -o /tmp/nginx.tar nginx"},
		{"export_container", map[string]any{"container": "web", "output": "/tmp/web.tar"}, "docker export -o /tmp/web.tar web"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			s, runner := setupTestServer(t, Deps{})
			result := call(t, s, tt.tool, tt.args)
			assert.False(t, result.IsError, resultText(t, result))
			assert.Equal(t, []string{tt.want}, runner.ran())
		})
	}
}

func TestContainerTools_MissingArguments(t *testing.T) {
	tests := []struct {
		tool     string
		args     map[string]any
		argument string
	}{
		{"container_logs", nil, "container"},
		{"stop_container", map[string]any{"container": ""}, "container"},
		{"exec_container", map[string]any{"container": "web"}, "command"},
		{"run_container", map[string]any{"name": "web"}, "image"},
		{"pull_image", nil, "image"},
		{"save_image", map[string]any{"image": "nginx"}, "output"},
		{"backup_volume", map[string]any{"volume": "data"}, "destination"},
		{"restore_volume", map[string]any{"archive": "/tmp/a.tar.gz"}, "volume"},
		{"project_status", nil, "project"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			s, runner := setupTestServer(t, Deps{})
			result := call(t, s, tt.tool, tt.args)
			assert.True(t, result.IsError)
			assert.Equal(t, "missing required argument: "+tt.argument, resultText(t, result))
			assert.Empty(t, runner.ran())
		})
	}
}

func TestRunContainer(t *testing.T) {
	s, runner := setupTestServer(t, Deps{})

	result := call(t, s, "run_container", map[string]any{
		"image":   "nginx:alpine",
		"name":    "web",
		"ports":   []any{"8080:80"},
		"env":     []any{"MODE=prod"},
		"volumes": []any{"html:/usr/share/nginx/html:ro"},
	})

	assert.False(t, result.IsError)
	assert.Equal(t,
		[]string{"docker run -d --name web -p 8080:80 -e MODE=prod -v html:/usr/share/nginx/html:ro nginx:alpine"},
		runner.ran())
}

func TestRunContainer_InvalidPort(t *testing.T) {
	s, runner := setupTestServer(t, Deps{})

	result := call(t, s, "run_container", map[string]any{"image": "nginx", "ports": []any{"eighty"}})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "eighty")
	assert.Empty(t, runner.ran())
}

// =============================================================================
// Backup Tool Tests
// =============================================================================

func TestBackupVolume(t *testing.T) {
	s, runner := setupTestServer(t, Deps{})
	dest := t.TempDir()

	result := call(t, s, "backup_volume", map[string]any{"volume": "pgdata", "destination": dest})

	require.False(t, result.IsError, resultText(t, result))
	require.Len(t, runner.ran(), 1)
	cmd := runner.ran()[0]
	assert.Contains(t, cmd, "docker run --rm -v pgdata:/volume:ro -v "+dest+":/backup alpine:3.20 tar czf /backup/pgdata-20260314-092653-")
	assert.Contains(t, resultText(t, result), "volume pgdata backed up to "+filepath.Join(dest, "pgdata-20260314-092653-"))
}

func TestBackupVolume_MissingVolume(t *testing.T) {
	s, runner := setupTestServer(t, Deps{})

	result := call(t, s, "backup_volume", map[string]any{"volume": "", "destination": "/srv"})
	assert.True(t, result.IsError)
	assert.Equal(t, "missing required argument: volume", resultText(t, result))
	assert.Empty(t, runner.ran())
}

func TestRestoreVolume(t *testing.T) {
	s, runner := setupTestServer(t, Deps{})

	result := call(t, s, "restore_volume", map[string]any{"volume": "pgdata", "archive": "/srv/backups/pgdata.tar.gz"})

	assert.False(t, result.IsError)
	assert.Equal(t,
		[]string{"docker run --rm -v pgdata:/volume -v /srv/backups:/backup:ro alpine:3.20 tar xzf /backup/pgdata.tar.gz -C /volume"},
		runner.ran())
}

func TestBackupArchiveName(t *testing.T) {
	a := backupArchiveName("data", "20260101-000000")
	b := backupArchiveName("data", "20260101-000000")
	assert.Regexp(t, `^data-20260101-000000-[0-9a-f]{8}\.tar\.gz$`, a)
	assert.NotEqual(t, a, b)
}

func TestAbsPath(t *testing.T) {
	assert.Equal(t, "", absPath(""))
	assert.Equal(t, "/srv/x", absPath("/srv/x"))
	assert.True(t, filepath.IsAbs(absPath("relative/x")))
}
