package observability

import (
	"testing"

	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaultsFromAppConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")

	cfg := LoadConfig(config.Config{AppName: "ledger", AppVersion: "1.2.3", Environment: "production", OTLPEndpoint: "otel:4317"})

	assert.Equal(t, "ledger", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "otel:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.False(t, cfg.Debug())
}

func TestDebugFollowsLevelOrEnvironment(t *testing.T) {
	assert.True(t, Config{LogLevel: "debug", Environment: "production"}.Debug())
	assert.True(t, Config{LogLevel: "info", Environment: "Local"}.Debug())
	assert.False(t, Config{LogLevel: "info", Environment: "staging"}.Debug())
}
