package project

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/dockrelay/internal/core/compose"
)

// =============================================================================
// Test Fixtures
// =============================================================================

func shopProject() Project {
	return Project{
		Name: "shop",
		Services: []Service{
			{
				Name:      "web",
				Image:     "nginx:alpine",
				Ports:     []string{"8080:80"},
				DependsOn: []string{"api"},
				Restart:   "unless-stopped",
			},
			{
				Name:        "api",
				Image:       "shop/api:1.0",
				Environment: map[string]string{"DB_HOST": "db"},
				DependsOn:   []string{"db", "cache"},
				Command:     []string{"serve", "--port", "9000"},
			},
			{
				Name:    "db",
				Image:   "postgres:16",
				Volumes: []string{"pgdata:/var/lib/postgresql/data"},
			},
			{Name: "cache", Image: "redis:7"},
		},
	}
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestRegistry_PutGet(t *testing.T) {
	r := NewRegistry()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	stored := r.Put(shopProject())
	assert.Equal(t, fixed, stored.UpdatedAt)

	got, err := r.Get("shop")
	require.NoError(t, err)
	assert.Equal(t, "shop", got.Name)
	assert.Len(t, got.Services, 4)
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := NewRegistry()
	r.Put(shopProject())
	r.Put(Project{Name: "shop", Services: []Service{{Name: "solo", Image: "alpine"}}})

	got, err := r.Get("shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, got.ServiceNames())
}

func TestRegistry_GetMissing(t *testing.T) {
	_, err := NewRegistry().Get("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `project "ghost" is not defined`, err.Error())
}

func TestRegistry_DeleteAndList(t *testing.T) {
	r := NewRegistry()
	r.Put(Project{Name: "zeta"})
	r.Put(Project{Name: "alpha"})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)

	assert.True(t, r.Delete("alpha"))
	assert.False(t, r.Delete("alpha"))
	assert.Len(t, r.List(), 1)
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(shopProject()))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Project)
		wantErr error
	}{
		{"uppercase name", func(p *Project) { p.Name = "Shop" }, ErrInvalidName},
		{"empty name", func(p *Project) { p.Name = "" }, ErrInvalidName},
		{"no services", func(p *Project) { p.Services = nil }, ErrNoServices},
		{"missing image", func(p *Project) { p.Services[3].Image = " " }, ErrMissingImage},
		{"duplicate", func(p *Project) { p.Services[3].Name = "db" }, ErrDuplicateService},
		{"bad service name", func(p *Project) { p.Services[3].Name = "-cache" }, ErrInvalidService},
		{"unknown dependency", func(p *Project) { p.Services[0].DependsOn = []string{"ghost"} }, ErrUnknownDependency},
		{"cycle", func(p *Project) { p.Services[2].DependsOn = []string{"web"} }, ErrCircularDependency},
		{"bad port", func(p *Project) { p.Services[0].Ports = []string{"eighty"} }, ErrInvalidPort},
		{"bad restart", func(p *Project) { p.Services[0].Restart = "sometimes" }, ErrInvalidRestart},
		{"empty volume", func(p *Project) { p.Services[2].Volumes = []string{""} }, ErrInvalidService},
		{"bad service network", func(p *Project) { p.Services[0].Networks = []string{"front end"} }, ErrInvalidNetwork},
		{"bad network", func(p *Project) { p.Networks = []Network{{Name: "-net"}} }, ErrInvalidNetwork},
		{"duplicate network", func(p *Project) { p.Networks = []Network{{Name: "net"}, {Name: "net"}} }, ErrInvalidNetwork},
		{"empty label key", func(p *Project) { p.Services[0].Labels = map[string]string{" ": "x"} }, ErrInvalidService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := shopProject()
			tt.mutate(&p)

			err := Validate(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
		})
	}
}

func TestValidate_RestartOnFailureCount(t *testing.T) {
	p := shopProject()
	p.Services[0].Restart = "on-failure:3"
	assert.NoError(t, Validate(p))
}

// =============================================================================
// Ordering Tests
// =============================================================================

func TestOrder_DependenciesFirst(t *testing.T) {
	order, err := Order(shopProject().Services)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "db", "api", "web"}, order)
}

func TestOrder_Independent_Alphabetical(t *testing.T) {
	order, err := Order([]Service{{Name: "c"}, {Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestOrder_Empty(t *testing.T) {
	order, err := Order(nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestOrder_Cycle(t *testing.T) {
	_, err := Order([]Service{
		{Name: "a", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
		{Name: "c"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
	assert.Contains(t, err.Error(), "a, b")
}

func TestOrder_SelfReference(t *testing.T) {
	_, err := Order([]Service{{Name: "a", DependsOn: []string{"a"}}})
	assert.ErrorIs(t, err, ErrCircularDependency)
}

// =============================================================================
// Naming Tests
// =============================================================================

func TestComposeFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/var/lib/dockrelay", "shop", "compose.yaml"), ComposeFilePath("/var/lib/dockrelay", "shop"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, map[string]string{
		"com.dockrelay.managed": "true",
		"com.dockrelay.project": "shop",
		"com.dockrelay.service": "web",
	}, Labels("shop", "web"))
	assert.Equal(t, "com.dockrelay.managed=true", ManagedLabel)
}

// =============================================================================
// Plan Tests
// =============================================================================

func TestBuildPlan(t *testing.T) {
	dir := t.TempDir()
	plan, err := BuildPlan(shopProject(), dir)
	require.NoError(t, err)

	file := filepath.Join(dir, "shop", "compose.yaml")
	assert.Equal(t, "shop", plan.Project)
	assert.Equal(t, []string{"cache", "db", "api", "web"}, plan.Order)
	assert.Equal(t, file, plan.ComposeFile)
	assert.Equal(t, "docker compose -p shop -f "+file+" up -d", plan.Command)

	assert.Contains(t, plan.ComposeYAML, "name: shop")
	assert.Contains(t, plan.ComposeYAML, "com.dockrelay.project: shop")
	assert.Contains(t, plan.ComposeYAML, "com.dockrelay.service: web")
}

func TestBuildPlan_RenderedFileParses(t *testing.T) {
	plan, err := BuildPlan(shopProject(), t.TempDir())
	require.NoError(t, err)

	spec, err := compose.Parse(plan.ComposeYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "cache", "db", "web"}, spec.ServiceNames())
	require.Len(t, spec.Volumes, 1)
	assert.Equal(t, "pgdata", spec.Volumes[0].Name)
	assert.Equal(t, "shop", spec.Volumes[0].Labels[LabelProject])

	web := spec.Services[3]
	assert.Equal(t, "true", web.Labels[LabelManaged])
	assert.Equal(t, []string{"api"}, web.DependsOn)
}

func TestBuildPlan_KeepsDollarValuesLiteral(t *testing.T) {
	p := shopProject()
	p.Services[1].Environment["DB_PASSWORD"] = "p$ss"
	p.Services[1].Command = []string{"sh", "-c", "echo $HOME"}

	plan, err := BuildPlan(p, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, plan.ComposeYAML, "p$$ss")

	spec, err := compose.Parse(plan.ComposeYAML)
	require.NoError(t, err)
	api := spec.Services[0]
	assert.Equal(t, "p$ss", api.Environment["DB_PASSWORD"])
	assert.Equal(t, []string{"sh", "-c", "echo $HOME"}, api.Command)
}

func TestBuildPlan_Networks(t *testing.T) {
	p := shopProject()
	p.Networks = []Network{
		{Name: "backend", Driver: "bridge"},
		{Name: "edge", External: true},
	}
	p.Services[0].Networks = []string{"edge", "frontend"}
	p.Services[0].Labels = map[string]string{"tier": "web", LabelProject: "other"}
	p.Services[1].Networks = []string{"backend", "frontend"}

	plan, err := BuildPlan(p, t.TempDir())
	require.NoError(t, err)

	spec, err := compose.Parse(plan.ComposeYAML)
	require.NoError(t, err)
	require.Len(t, spec.Networks, 3)

	backend, edge, frontend := spec.Networks[0], spec.Networks[1], spec.Networks[2]
	assert.Equal(t, "bridge", backend.Driver)
	assert.Equal(t, "shop", backend.Labels[LabelProject])
	assert.True(t, edge.External)
	assert.Equal(t, "frontend", frontend.Name)
	assert.Equal(t, "true", frontend.Labels[LabelManaged])

	web := spec.Services[3]
	assert.Equal(t, []string{"edge", "frontend"}, web.Networks)
	assert.Equal(t, "web", web.Labels["tier"])
	assert.Equal(t, "shop", web.Labels[LabelProject], "bookkeeping labels win")
}

func TestBuildPlan_Deterministic(t *testing.T) {
	dir := t.TempDir()
	first, err := BuildPlan(shopProject(), dir)
	require.NoError(t, err)
	second, err := BuildPlan(shopProject(), dir)
	require.NoError(t, err)
	assert.Equal(t, first.ComposeYAML, second.ComposeYAML)
}

func TestBuildPlan_InvalidProject(t *testing.T) {
	p := shopProject()
	p.Services[0].Image = ""
	_, err := BuildPlan(p, t.TempDir())
	assert.ErrorIs(t, err, ErrMissingImage)
}

func TestPlan_Summary(t *testing.T) {
	plan, err := BuildPlan(shopProject(), "/data")
	require.NoError(t, err)

	summary := plan.Summary()
	assert.Contains(t, summary, "start order: cache -> db -> api -> web")
	assert.Contains(t, summary, "command: docker compose -p shop")
	assert.Contains(t, summary, "services:")
}

func TestNamedVolume(t *testing.T) {
	tests := []struct {
		mount string
		name  string
		ok    bool
	}{
		{"data:/data", "data", true},
		{"data:/data:ro", "data", true},
		{"./html:/usr/share/nginx/html", "", false},
		{"/srv/data:/data", "", false},
		{"/anonymous", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.mount, func(t *testing.T) {
			name, ok := namedVolume(tt.mount)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

// =============================================================================
// Import Tests
// =============================================================================

func TestFromCompose(t *testing.T) {
	p, err := FromCompose("blog", `
services:
  wordpress:
    image: wordpress:6
    ports:
      - "8080:80"
    environment:
      WORDPRESS_DB_HOST: db
    depends_on:
      - db
    restart: always
  db:
    image: mysql:8
    volumes:
      - db_data:/var/lib/mysql
volumes:
  db_data:
`, nil)
	require.NoError(t, err)
	assert.Equal(t, "blog", p.Name)
	assert.Equal(t, []string{"db", "wordpress"}, p.ServiceNames())

	wp, ok := p.Service("wordpress")
	require.True(t, ok)
	assert.Equal(t, []string{"8080:80"}, wp.Ports)
	assert.Equal(t, "db", wp.Environment["WORDPRESS_DB_HOST"])
	assert.Equal(t, []string{"db"}, wp.DependsOn)
	assert.Equal(t, "always", wp.Restart)

	db, ok := p.Service("db")
	require.True(t, ok)
	assert.Equal(t, []string{"db_data:/var/lib/mysql"}, db.Volumes)

	assert.NoError(t, Validate(p))
}

func TestFromCompose_NetworksAndLabels(t *testing.T) {
	p, err := FromCompose("blog", `
services:
  wordpress:
    image: wordpress:6
    networks: [front, back]
    labels:
      tier: web
  db:
    image: mysql:8
    networks: [back]
networks:
  front: {}
  back:
    driver: bridge
  shared:
    external: true
`, nil)
	require.NoError(t, err)

	assert.Equal(t, []Network{
		{Name: "back", Driver: "bridge"},
		{Name: "front"},
		{Name: "shared", External: true},
	}, p.Networks)

	wp, ok := p.Service("wordpress")
	require.True(t, ok)
	assert.Equal(t, []string{"back", "front"}, wp.Networks)
	assert.Equal(t, map[string]string{"tier": "web"}, wp.Labels)
	assert.NoError(t, Validate(p))
}

func TestFromCompose_ResolvesVariables(t *testing.T) {
	p, err := FromCompose("web", `
services:
  web:
    image: nginx:${IMG_TAG:-latest}
    environment:
      LITERAL: "a$$b"
`, map[string]string{"IMG_TAG": "1.27"})
	require.NoError(t, err)

	web := p.Services[0]
	assert.Equal(t, "nginx:1.27", web.Image)
	assert.Equal(t, "a$b", web.Environment["LITERAL"])

	plan, err := BuildPlan(p, t.TempDir())
	require.NoError(t, err)
	spec, err := compose.Parse(plan.ComposeYAML)
	require.NoError(t, err)
	assert.Equal(t, "a$b", spec.Services[0].Environment["LITERAL"])
	assert.Equal(t, "nginx:1.27", spec.Services[0].Image)
}

func TestFromCompose_BuildOnly(t *testing.T) {
	_, err := FromCompose("app", `
services:
  app:
    build: .
`, nil)
	assert.ErrorIs(t, err, ErrMissingImage)
}

func TestFromCompose_InvalidInput(t *testing.T) {
	_, err := FromCompose("app", "services: {}", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidComposeInput)
	assert.ErrorIs(t, err, compose.ErrNoServices)
}

func TestFromCompose_InvalidName(t *testing.T) {
	_, err := FromCompose("Not Valid", "services:\n  a:\n    image: alpine\n", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestListManagedCommand(t *testing.T) {
	assert.Equal(t,
		`docker ps -a --filter label=com.dockrelay.managed=true --format '{{.Label "com.dockrelay.project"}}\t{{.Label "com.dockrelay.service"}}\t{{.Names}}\t{{.Status}}'`,
		ListManagedCommand())
}
