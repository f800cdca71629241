package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-tracker/internal/apperr"
	"time-tracker/internal/config"
	"time-tracker/internal/handler"
	"time-tracker/internal/model"
	"time-tracker/internal/ratelimit"
	"time-tracker/internal/service"
	"time-tracker/internal/sse"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			Path:        filepath.Join(t.TempDir(), "tt.db"),
			AutoMigrate: true,
		},
		OpenAI:  config.OpenAIConfig{Endpoint: "http://localhost:0", APIKey: "k", Deployment: "gpt-4o"},
		AIUsage: config.AIUsageConfig{MaxCallsPerMonth: 150, MinSecondsBetweenCalls: 10},
	}
}

func TestBuildContainer_ResolvesGraph(t *testing.T) {
	inj := BuildContainer(testConfig(t))
	t.Cleanup(func() { _ = inj.Shutdown() })

	assert.NotNil(t, do.MustInvoke[*handler.TimeHandler](inj))
	assert.NotNil(t, do.MustInvoke[*handler.AIHandler](inj))

	_, isMemory := do.MustInvoke[ratelimit.Limiter](inj).(*ratelimit.Memory)
	assert.True(t, isMemory)

	svc := do.MustInvoke[*service.TimeTrackingService](inj)
	user := model.Authenticated{ID: "u1"}
	p := svc.CreateProject(context.Background(), user, "Platform")
	require.NotNil(t, p)
	assert.Len(t, svc.GetProjects(context.Background(), user), 1)
}

func TestBuildContainer_UsesRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()

	inj := BuildContainer(cfg)
	t.Cleanup(func() { _ = inj.Shutdown() })

	_, isRedis := do.MustInvoke[ratelimit.Limiter](inj).(*ratelimit.Redis)
	assert.True(t, isRedis)
}

func TestBuildContainer_NotificationsReachBroker(t *testing.T) {
	inj := BuildContainer(testConfig(t))
	t.Cleanup(func() { _ = inj.Shutdown() })

	broker := do.MustInvoke[*sse.Broker](inj)
	ch := broker.Subscribe("u1")
	defer broker.Unsubscribe(ch)

	do.MustInvoke[*apperr.Notifier](inj).Publish(apperr.Notification{
		Message:  "Could not save your time entry",
		Severity: apperr.Error,
		UserID:   "u1",
	})

	msg := <-ch
	assert.Contains(t, string(msg), "event: notification")
	assert.Contains(t, string(msg), "Could not save your time entry")
}
