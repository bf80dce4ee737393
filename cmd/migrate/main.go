// Command migrate manages the database schema.
//
//	migrate up            apply all pending migrations
//	migrate down          roll back the last migration
//	migrate goto <n>      migrate up or down to version n
//	migrate version       print the applied version
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/pkg/logger"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down | goto <version> | version")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.LogConfig{})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	path := cfg.Database.MigrationsPath

	switch os.Args[1] {
	case "up":
		err = db.RunMigrations(path)
	case "down":
		err = db.MigrateDown(path)
	case "goto":
		if len(os.Args) < 3 {
			usage()
		}
		v, perr := strconv.ParseUint(os.Args[2], 10, 32)
		if perr != nil {
			log.Fatal().Err(perr).Str("version", os.Args[2]).Msg("Invalid version")
		}
		err = db.MigrateToVersion(path, uint(v))
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = db.MigrationVersion(path)
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		usage()
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Migration command failed")
	}
}
