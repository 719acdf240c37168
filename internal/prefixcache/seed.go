package prefixcache

// defaultSeedCommands is a small, fixed list of common shell commands
// inserted at construction when WithSeeding(true) is set, so the very
// first few keystrokes of a session are never met with an empty cache.
// Tests keep seeding disabled (the default) to stay deterministic.
var defaultSeedCommands = []string{
	"git status",
	"git add .",
	"git commit -m",
	"git push",
	"git pull",
	"ls -la",
	"cd ..",
	"docker ps",
	"docker compose up",
	"kubectl get pods",
	"npm install",
	"npm run build",
}

func (c *Cache) seedDefaults() {
	for _, cmd := range defaultSeedCommands {
		c.Put(cmd)
	}
}
