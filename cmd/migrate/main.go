// Command migrate applies the content schema to the BaaS Postgres database.
//
// Usage:
//
//	migrate [up|down|status]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"pycsa-web/internal/config"
	"pycsa-web/internal/database"
	"pycsa-web/internal/logger"
	"pycsa-web/migrations"

	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status]\n", os.Args[0])
		flag.PrintDefaults()
	}
	dsn := flag.String("database-url", "", "Postgres URL, defaults to DATABASE_URL")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *dsn == "" {
		*dsn = cfg.Database.URL
	}

	log, err := logger.New(cfg.Server.Env, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Open(context.Background(), *dsn)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	switch command {
	case "up":
		err = database.RunMigrations(db, migrations.FS, log)
	case "down":
		err = database.RollbackMigration(db, migrations.FS, log)
	case "status":
		err = database.GetMigrationStatus(db, migrations.FS)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}
