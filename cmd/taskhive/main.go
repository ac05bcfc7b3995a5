package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/logger"
	"github.com/taskhive/taskhive/internal/migration"
	"github.com/taskhive/taskhive/internal/server"
	"github.com/taskhive/taskhive/pkg/db"
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
