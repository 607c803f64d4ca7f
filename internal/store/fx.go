package store

import (
	"github.com/smallbiznis/churnscope/internal/store/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("store.repository",
	fx.Provide(repository.Provide),
)
