package jobs

import (
	"context"

	"github.com/taskhive/taskhive/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("jobs",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(registerWorkers),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
	}.withDefaults()
}

func registerWorkers(lc fx.Lifecycle, q *Queue) {
	workerCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			q.Start(workerCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			q.Wait()
			return nil
		},
	})
}
