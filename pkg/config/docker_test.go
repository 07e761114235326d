package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteLoopback(t *testing.T) {
	tests := []struct {
		host        string
		inContainer bool
		want        string
	}{
		{"localhost", false, "localhost"},
		{"localhost", true, dockerHostGateway},
		{"127.0.0.1", true, dockerHostGateway},
		{"::1", true, dockerHostGateway},
		{"db.internal", true, "db.internal"},
		{"192.168.1.100", true, "192.168.1.100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rewriteLoopback(tt.host, tt.inContainer), "host=%s inContainer=%v", tt.host, tt.inContainer)
	}
}

func TestResolveContainerHosts_SkipsDisabledRedis(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "localhost"},
		Redis:    RedisConfig{Host: ""},
	}

	cfg.resolveContainerHosts(true)

	assert.Equal(t, dockerHostGateway, cfg.Database.Host)
	assert.Equal(t, "", cfg.Redis.Host)
	assert.False(t, cfg.Redis.Enabled())
}
