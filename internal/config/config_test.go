package config_test

import (
	"testing"
	"time"

	"taskboard/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 3, cfg.ChangeOrderRetries)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.DBMigrate)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL", "30")
	t.Setenv("RETRY_DELAY", "50ms")
	t.Setenv("CHANGE_ORDER_RETRIES", "5")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://board.example.com")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 5, cfg.ChangeOrderRetries)
	assert.False(t, cfg.DBMigrate)
	assert.Equal(t, []string{"http://localhost:5173", "https://board.example.com"}, cfg.CORSOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("CACHE_TTL", "soon")

	cfg := config.Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestConfig_ConnectionStrings(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "kanban"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=kanban sslmode=disable", cfg.DSN())
	assert.Equal(t, "pgx5://u:p@db:5432/kanban?sslmode=disable", cfg.MigrateURL())
}
