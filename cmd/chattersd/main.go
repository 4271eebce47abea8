package main

import (
	"github.com/bwmarrin/snowflake"
	aggservice "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/service"
	"github.com/carlosribasgomez/chatters-dashboard/internal/archive"
	"github.com/carlosribasgomez/chatters-dashboard/internal/clock"
	"github.com/carlosribasgomez/chatters-dashboard/internal/config"
	"github.com/carlosribasgomez/chatters-dashboard/internal/ingest"
	"github.com/carlosribasgomez/chatters-dashboard/internal/logger"
	"github.com/carlosribasgomez/chatters-dashboard/internal/obs"
	"github.com/carlosribasgomez/chatters-dashboard/internal/pipeline"
	"github.com/carlosribasgomez/chatters-dashboard/internal/reconcile"
	"github.com/carlosribasgomez/chatters-dashboard/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		obs.Module,

		// Reporting engine
		ingest.Module,
		reconcile.Module,
		aggservice.Module,
		archive.Module,
		pipeline.Module,

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
