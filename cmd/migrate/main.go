package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"restaurant/internal/config"
	"restaurant/internal/infra/db"
	"restaurant/internal/infra/migrations"
	"restaurant/internal/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{Service: "migrate", Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := logg.WithField(context.Background(), "cmd", *cmd)
	ctx = logg.WithField(ctx, "driver", cfg.DB.Driver)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		logg.Error(ctx, "db connect failed", err)
		os.Exit(1)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		logg.Error(ctx, "sql db handle failed", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := migrations.Run(ctx, sqlDB, cfg.DB.Driver, *cmd, flag.Args()...); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration finished")
}
