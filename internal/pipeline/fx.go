package pipeline

import (
	"github.com/smallbiznis/churnscope/internal/schema"
	"go.uber.org/fx"
)

var Module = fx.Module("pipeline",
	fx.Provide(schema.NewValidator),
	fx.Provide(NewRunner),
)
