package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/db"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
	"github.com/sfconnect/sfconnect-backend/pkg/migrate"
)

type migrateArgs struct {
	cmd     string
	dir     string
	name    string
	version string
}

func parseArgs() migrateArgs {
	var a migrateArgs
	flag.StringVar(&a.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&a.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&a.name, "name", "", "migration name (for create)")
	flag.StringVar(&a.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()
	return a
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()
	args := parseArgs()

	// create and validate work purely on the filesystem, no database needed.
	switch args.cmd {
	case "create":
		if args.name == "" {
			die("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(args.dir, args.name)
		if err != nil {
			die("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.ValidateDir(args.dir); err != nil {
			die("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": args.cmd,
		"dir": args.dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to unwrap sql database", err)
		os.Exit(1)
	}

	logg.Info(ctx, "migrate ready")

	switch args.cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, args.dir, args.cmd); err != nil {
			die("goose %s failed: %v", args.cmd, err)
		}

	case "version":
		if args.version == "" {
			die("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, args.dir, args.version); err != nil {
			die("goose version migrate failed: %v", err)
		}

	default:
		die("unknown -cmd value: %s", args.cmd)
	}
}
