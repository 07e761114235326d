package config

import (
	"os"
	"sync"
)

const dockerHostGateway = "host.docker.internal"

var (
	inContainerOnce   sync.Once
	inContainerResult bool
)

// InContainer reports whether the process runs inside a Docker container,
// detected by the /.dockerenv marker. The result is cached.
func InContainer() bool {
	inContainerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inContainerResult = err == nil
	})
	return inContainerResult
}

// rewriteLoopback maps a loopback host to the Docker host gateway when running
// in a container, so a database or Redis on the host machine stays reachable.
func rewriteLoopback(host string, inContainer bool) string {
	if !inContainer {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return dockerHostGateway
	}
	return host
}

// resolveContainerHosts rewrites the store and cache hosts in place.
func (c *Config) resolveContainerHosts(inContainer bool) {
	c.Database.Host = rewriteLoopback(c.Database.Host, inContainer)
	if c.Redis.Enabled() {
		c.Redis.Host = rewriteLoopback(c.Redis.Host, inContainer)
	}
}
