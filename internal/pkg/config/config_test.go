package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoexport/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("geoexport-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "geoexport-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, 4, cfg.Export.Workers)
	assert.Equal(t, "geoexport-exports", cfg.Temporal.TaskQueue)
	assert.Equal(t, "postgres://geoexport:@localhost:5432/geoexport?sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOEXPORT_SERVER_PORT", "9090")
	t.Setenv("GEOEXPORT_STORAGE_DIR", "/var/lib/geoexport")
	t.Setenv("GEOEXPORT_LOG_LEVEL", "debug")

	cfg, err := config.Load("geoexport-test")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/geoexport", cfg.Storage.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"server.port must be 1-65535",
		"database.host is required",
		"storage.dir is required",
		"export.workers must be positive",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
