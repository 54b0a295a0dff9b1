package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Apurer/go-gin-supply-api/internal/app/api"
	"github.com/Apurer/go-gin-supply-api/internal/platform/database"
	"github.com/Apurer/go-gin-supply-api/internal/platform/migrations"
	"github.com/Apurer/go-gin-supply-api/internal/platform/observability"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|version]\n", os.Args[0])
		flag.PrintDefaults()
	}
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := observability.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Open(ctx, database.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	switch command {
	case "up":
		err = migrations.Run(ctx, db, logger)
	case "down":
		err = migrations.Down(ctx, db)
	case "version":
		var v int64
		if v, err = migrations.Version(ctx, db); err == nil {
			fmt.Println(v)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", command, err)
	}
	logger.Info("migrate completed", "command", command)
}
