package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/churnscope/internal/clock"
	"github.com/smallbiznis/churnscope/internal/config"
	"github.com/smallbiznis/churnscope/internal/filestore"
	"github.com/smallbiznis/churnscope/internal/logger"
	"github.com/smallbiznis/churnscope/internal/metrics"
	"github.com/smallbiznis/churnscope/internal/migration"
	"github.com/smallbiznis/churnscope/internal/model"
	"github.com/smallbiznis/churnscope/internal/notify"
	"github.com/smallbiznis/churnscope/internal/pipeline"
	"github.com/smallbiznis/churnscope/internal/scoring"
	"github.com/smallbiznis/churnscope/internal/server"
	"github.com/smallbiznis/churnscope/internal/store"
	"github.com/smallbiznis/churnscope/internal/watch"
	"github.com/smallbiznis/churnscope/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		model.Module,
		scoring.Module,
		store.Module,
		filestore.Module,
		notify.Module,
		metrics.Module,
		pipeline.Module,

		watch.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
