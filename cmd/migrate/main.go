// Command migrate applies or reverts the database schema.
//
//	migrate up       apply pending migrations
//	migrate down     revert the latest migration
//	migrate version  print the current version
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/umar/usergroups/internal/config"
	"github.com/umar/usergroups/internal/database"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [up|down|version]")
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "up":
		err = database.RunMigrations(cfg.DatabaseURL)
	case "down":
		err = database.RollbackMigration(cfg.DatabaseURL)
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = database.MigrationVersion(cfg.DatabaseURL)
		if err == nil {
			fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("migration failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}
