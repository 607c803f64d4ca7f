package watch

import (
	"context"

	"github.com/smallbiznis/churnscope/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("watch",
	fx.Provide(New),
	fx.Invoke(StartWatcher),
)

func StartWatcher(lc fx.Lifecycle, cfg config.Config, w *Watcher) {
	if !cfg.WatchEnabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go w.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
