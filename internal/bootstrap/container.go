// Package bootstrap wires the application graph.
package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"gorm.io/gorm"

	"time-tracker/internal/apperr"
	"time-tracker/internal/config"
	"time-tracker/internal/handler"
	"time-tracker/internal/llm"
	"time-tracker/internal/logger"
	"time-tracker/internal/ratelimit"
	"time-tracker/internal/repo"
	"time-tracker/internal/safeexec"
	"time-tracker/internal/service"
	"time-tracker/internal/sse"
)

func BuildContainer(cfg *config.Config) *do.Injector {
	inj := do.New()

	do.ProvideValue(inj, cfg)

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		db, err := cfg.OpenGormDB()
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := repo.AutoMigrate(db); err != nil {
				return nil, err
			}
		}
		return db, nil
	})

	// Redis is optional; a nil client means a single-instance deployment.
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cfg.NewRedisClient(context.Background())
		if err != nil {
			logger.Warn("redis unavailable, using in-process rate limit", "addr", cfg.Redis.Addr, "err", err)
			return nil, nil
		}
		return rdb, nil
	})

	do.Provide(inj, func(i *do.Injector) (ratelimit.Limiter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if rdb := do.MustInvoke[*redis.Client](i); rdb != nil {
			return ratelimit.NewRedis(rdb, cfg.MinAIInterval()), nil
		}
		return ratelimit.NewMemory(cfg.MinAIInterval(), time.Now), nil
	})

	do.Provide(inj, func(i *do.Injector) (llm.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return llm.NewOpenAI(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.Deployment), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.WorkDayRepo, error) {
		return repo.NewWorkDayRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.UsageRepo, error) {
		return repo.NewUsageRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SummaryRepo, error) {
		return repo.NewSummaryRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Error handling
	do.Provide(inj, func(i *do.Injector) (*apperr.Notifier, error) {
		return apperr.NewNotifier(), nil
	})
	do.Provide(inj, func(i *do.Injector) (*safeexec.Executor, error) {
		return safeexec.New(apperr.NewHandler(do.MustInvoke[*apperr.Notifier](i))), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (*service.SummaryState, error) {
		return service.NewSummaryState(), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.AIService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewAIService(
			do.MustInvoke[llm.Client](i),
			do.MustInvoke[ratelimit.Limiter](i),
			do.MustInvoke[repo.UsageRepo](i),
			do.MustInvoke[repo.SummaryRepo](i),
			do.MustInvoke[*service.SummaryState](i),
			do.MustInvoke[*safeexec.Executor](i),
			service.AIConfig{MaxCallsPerMonth: cfg.AIUsage.MaxCallsPerMonth},
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.TimeTrackingService, error) {
		return service.NewTimeTrackingService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.WorkDayRepo](i),
			do.MustInvoke[*safeexec.Executor](i),
			do.MustInvoke[*service.AIService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.SummaryService, error) {
		return service.NewSummaryService(
			do.MustInvoke[*service.TimeTrackingService](i),
			do.MustInvoke[*service.AIService](i),
			do.MustInvoke[*service.SummaryState](i),
		), nil
	})

	// Events
	do.Provide(inj, func(i *do.Injector) (*sse.Broker, error) {
		b := sse.NewBroker()
		do.MustInvoke[*apperr.Notifier](i).Subscribe(b.PublishNotification)
		do.MustInvoke[*service.SummaryState](i).OnChange(b.PublishSummary)
		return b, nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.TimeHandler, error) {
		return handler.NewTimeHandler(
			do.MustInvoke[*service.TimeTrackingService](i),
			do.MustInvoke[*sse.Broker](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AIHandler, error) {
		return handler.NewAIHandler(
			do.MustInvoke[*service.AIService](i),
			do.MustInvoke[*service.SummaryService](i),
		), nil
	})

	return inj
}
