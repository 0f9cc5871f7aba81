package translate

// =============================================================================
// Pattern Fragments
// =============================================================================

const (
	// name matches container, volume, network and project names.
	name = `[A-Za-z0-9][\w.-]*`
	// image matches image references including registry, tag and digest.
	image = `[A-Za-z0-9][\w./:@-]*`
	// the swallows an optional article.
	the = `(?:the\s+)?`
	// listVerb is the leading verb of listing phrases.
	listVerb = `(?:list|show)\s+(?:me\s+)?(?:all\s+)?` + the
)

var (
	containerLifecycleVerbs = []string{"start", "stop", "restart", "pause", "unpause", "kill"}
	projectLifecycleVerbs   = []string{"start", "stop", "restart"}
)

// =============================================================================
// Built-in Cascade
// =============================================================================

// DefaultRules returns the built-in phrase table in match order.
// Specific phrasings come before generic ones that would also accept them.
func DefaultRules() []Rule {
	var rules []Rule
	add := func(ruleName, pattern, template string) {
		rules = append(rules, NewRule(ruleName, pattern, template))
	}

	add(PassthroughRule, `docker\s+(?P<args>.+)`, "docker ${args}")

	// Compose projects
	add("list-projects", listVerb+`(?:compose\s+)?projects`, "docker compose ls")
	add("project-services",
		listVerb+`services\s+(?:in|of|for)\s+`+the+`(?:project\s+)?(?P<project>`+name+`)`,
		"docker compose -p ${project} ps")
	add("project-logs",
		`(?:show|get)\s+`+the+`logs\s+(?:for|of|from)\s+`+the+`project\s+(?P<project>`+name+`)`,
		"docker compose -p ${project} logs --tail 100")
	for _, verb := range projectLifecycleVerbs {
		add(verb+"-project",
			verb+`\s+`+the+`project\s+(?P<project>`+name+`)`,
			"docker compose -p ${project} "+verb)
	}
	add("down-project",
		`(?:tear|take|bring)\s+down\s+`+the+`project\s+(?P<project>`+name+`)`,
		"docker compose -p ${project} down")

	// Listing
	add("list-running", listVerb+`running\s+containers|what(?:'s|\s+is)\s+running`, "docker ps")
	add("list-stopped", listVerb+`(?:stopped|exited)\s+containers`, "docker ps -a --filter status=exited")
	add("list-containers", listVerb+`containers`, "docker ps -a")
	add("list-dangling-images", listVerb+`dangling\s+images`, "docker images --filter dangling=true")
	add("list-images", listVerb+`images`, "docker images")
	add("list-volumes", listVerb+`volumes`, "docker volume ls")
	add("list-networks", listVerb+`networks`, "docker network ls")

	// Logs
	add("logs-last-n",
		`(?:show|get)\s+(?:me\s+)?`+the+`last\s+(?P<n>\d+)\s+(?:lines\s+of\s+)?logs?\s+(?:for|of|from)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker logs --tail ${n} ${container}")
	add("logs-tail",
		`(?:tail|follow)\s+`+the+`logs\s+(?:for|of|from)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker logs --tail 100 ${container}")
	add("logs",
		`(?:show|get|print)\s+(?:me\s+)?`+the+`logs\s+(?:for|of|from)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker logs ${container}")

	// Cleanup
	prune := `(?:remove|delete|clean\s+up|prune)\s+(?:all\s+)?` + the
	add("prune-containers", prune+`(?:stopped|exited)\s+containers`, "docker container prune -f")
	add("prune-images", prune+`(?:unused|dangling)\s+images`, "docker image prune -f")
	add("prune-volumes", prune+`unused\s+volumes`, "docker volume prune -f")
	add("prune-system", `(?:clean\s+up|prune)\s+`+the+`(?:docker\s+)?system`, "docker system prune -f")

	// Removal
	add("force-remove-container",
		`force\s+(?:remove|delete)\s+`+the+`container\s+(?P<container>`+name+`)`,
		"docker rm -f ${container}")
	add("remove-container",
		`(?:remove|delete)\s+`+the+`container\s+(?P<container>`+name+`)`,
		"docker rm ${container}")
	add("remove-image", `(?:remove|delete)\s+`+the+`image\s+(?P<image>`+image+`)`, "docker rmi ${image}")
	add("remove-network", `(?:remove|delete)\s+`+the+`network\s+(?P<network>`+name+`)`, "docker network rm ${network}")
	add("remove-volume", `(?:remove|delete)\s+`+the+`volume\s+(?P<volume>`+name+`)`, "docker volume rm ${volume}")

	// Networks and volumes
	add("create-network",
		`create\s+(?:an?\s+)?network\s+(?:(?:named|called)\s+)?(?P<network>`+name+`)`,
		"docker network create ${network}")
	add("create-volume",
		`create\s+(?:an?\s+)?volume\s+(?:(?:named|called)\s+)?(?P<volume>`+name+`)`,
		"docker volume create ${volume}")
	add("connect-network",
		`connect\s+`+the+`(?:container\s+)?(?P<container>`+name+`)\s+to\s+`+the+`(?:network\s+)?(?P<network>`+name+`)`,
		"docker network connect ${network} ${container}")
	add("disconnect-network",
		`disconnect\s+`+the+`(?:container\s+)?(?P<container>`+name+`)\s+from\s+`+the+`(?:network\s+)?(?P<network>`+name+`)`,
		"docker network disconnect ${network} ${container}")

	// Inspection
	add("inspect-volume", `inspect\s+`+the+`volume\s+(?P<volume>`+name+`)`, "docker volume inspect ${volume}")
	add("inspect-network", `inspect\s+`+the+`network\s+(?P<network>`+name+`)`, "docker network inspect ${network}")
	add("ip-address",
		`(?:what\s+is\s+|get\s+|show\s+)?`+the+`ip(?:\s+address)?\s+(?:of|for)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker inspect -f '{{range .NetworkSettings.Networks}}{{.IPAddress}}{{end}}' ${container}")
	add("health",
		`(?:check\s+|get\s+|show\s+)?`+the+`health(?:\s+status)?\s+(?:of|for)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker inspect -f '{{.State.Health.Status}}' ${container}")
	add("count-running", `how\s+many\s+containers\s+are\s+running`, "docker info --format '{{.ContainersRunning}}'")
	add("inspect-container", `inspect\s+`+the+`(?:container\s+)?(?P<container>`+name+`)`, "docker inspect ${container}")

	// Runtime state
	add("stats-container",
		`(?:show\s+)?`+the+`(?:stats|resource\s+usage)\s+(?:for|of)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker stats --no-stream ${container}")
	add("stats", `(?:show\s+)?`+the+`(?:stats|resource\s+usage)`, "docker stats --no-stream")
	add("top",
		`(?:show|list)\s+`+the+`processes\s+(?:in|of|for)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker top ${container}")
	add("ports",
		`(?:show|list)\s+`+the+`ports\s+(?:of|for)\s+(?:container\s+)?(?P<container>`+name+`)`,
		"docker port ${container}")

	// Run, then exec. A run phrase that goes on to say "in" is not an exec.
	runImage := `run\s+(?:an?\s+)?(?P<image>` + image + `)\s+(?:container\s+)?`
	add("run-named-port",
		runImage+`(?:named|called)\s+(?P<name>`+name+`)\s+on\s+port\s+(?P<port>\d+)`,
		"docker run -d --name ${name} -p ${port}:${port} ${image}")
	add("run-mapping",
		runImage+`mapping\s+port\s+(?P<host>\d+)\s+to\s+(?P<target>\d+)`,
		"docker run -d -p ${host}:${target} ${image}")
	add("run-named", runImage+`(?:named|called)\s+(?P<name>`+name+`)`, "docker run -d --name ${name} ${image}")
	add("run-port", runImage+`on\s+port\s+(?P<port>\d+)`, "docker run -d -p ${port}:${port} ${image}")
	add("run", `run\s+(?:an?\s+)?(?P<image>`+image+`)(?:\s+container)?`, "docker run -d ${image}")
	rules = append(rules, NewRule("exec",
		`(?:run|execute|exec)\s+(?P<command>.+?)\s+in(?:side)?\s+`+the+`(?:container\s+)?(?P<container>`+name+`)`,
		"docker exec ${container} ${command}",
	).Unless(`^`+runImage+`(?:named|called|on\s+port|mapping\s+port)\s`))

	// Images
	add("pull", `(?:pull|download|fetch)\s+`+the+`(?:image\s+)?(?P<image>`+image+`)`, "docker pull ${image}")
	add("push", `push\s+`+the+`(?:image\s+)?(?P<image>`+image+`)`, "docker push ${image}")
	add("build",
		`build\s+(?:an?\s+)?image\s+(?:named|called|tagged)\s+(?P<tag>`+image+`)\s+from\s+(?P<context>\S+)`,
		"docker build -t ${tag} ${context}")
	add("tag",
		`tag\s+`+the+`(?:image\s+)?(?P<source>`+image+`)\s+as\s+(?P<target>`+image+`)`,
		"docker tag ${source} ${target}")
	add("history", `(?:show\s+)?`+the+`history\s+(?:of|for)\s+(?:image\s+)?(?P<image>`+image+`)`, "docker history ${image}")
	add("search", `search\s+(?:docker\s+hub\s+)?for\s+(?P<term>\S+?)(?:\s+images?)?`, "docker search ${term}")

	// Backup and housekeeping
	add("rename",
		`rename\s+`+the+`(?:container\s+)?(?P<old>`+name+`)\s+to\s+(?P<new>`+name+`)`,
		"docker rename ${old} ${new}")
	add("copy-from",
		`copy\s+(?P<src>\S+)\s+from\s+`+the+`(?:container\s+)?(?P<container>`+name+`)\s+to\s+(?P<dst>\S+)`,
		"docker cp ${container}:${src} ${dst}")
	add("export",
		`export\s+`+the+`(?:container\s+)?(?P<container>`+name+`)\s+to\s+(?P<file>\S+)`,
		"docker export -o ${file} ${container}")
	add("save",
		`save\s+`+the+`(?:image\s+)?(?P<image>`+image+`)\s+to\s+(?P<file>\S+)`,
		"docker save -o ${file} ${image}")
	add("restart-policy",
		`(?:set\s+)?`+the+`restart\s+policy\s+(?:of|for)\s+(?:container\s+)?(?P<container>`+name+`)\s+to\s+(?P<policy>no|always|on-failure|unless-stopped)`,
		"docker update --restart ${policy} ${container}")

	// Container lifecycle, after everything that starts with the same verbs
	for _, verb := range containerLifecycleVerbs {
		add(verb+"-container",
			verb+`\s+`+the+`(?:container\s+)?(?P<container>`+name+`)`,
			"docker "+verb+" ${container}")
	}

	// Daemon
	add("disk-usage", `(?:show\s+)?`+the+`(?:docker\s+)?disk\s+usage`, "docker system df")
	add("info", `(?:show\s+)?`+the+`(?:docker\s+)?(?:system\s+)?info(?:rmation)?`, "docker info")
	add("version", `(?:show\s+)?`+the+`(?:docker\s+)?version`, "docker version")

	return rules
}
