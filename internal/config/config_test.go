package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyscope/internal/domain/procurement"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/supplyscope")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Worker.Interval)
	assert.Equal(t, procurement.DefaultConfig(), cfg.Procurement())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/supplyscope")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("WORKER_INTERVAL", "30s")
	t.Setenv("SCORING_GRACE_PERIOD_DAYS", "5")
	t.Setenv("REPORT_LIMIT", "20")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, 30*time.Second, cfg.Worker.Interval)
	assert.Equal(t, 5, cfg.Scoring.GracePeriodDays)
	assert.Equal(t, 20, cfg.Report.Limit)
	assert.Equal(t, 0.7, cfg.Scoring.GraceCredit)
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/supplyscope")

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
scoring:
  order_value_benchmark: 25000
report:
  min_completed_orders: 5
`)))

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, 25000.0, cfg.Scoring.OrderValueBenchmark)
	assert.Equal(t, 5, cfg.Report.MinCompletedOrders)
	assert.Equal(t, 10, cfg.Report.Limit)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := load(viper.New())
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://db/supplyscope")
	t.Setenv("WORKER_INTERVAL", "0s")
	_, err = load(viper.New())
	assert.ErrorContains(t, err, "worker.interval")
}
