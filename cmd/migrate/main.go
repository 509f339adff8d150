package main

import (
	"os"

	"github.com/ghuser/unitprice/migrations/shell"
	"github.com/ghuser/unitprice/pkg/config"
	"github.com/ghuser/unitprice/pkg/logger"
	"github.com/ghuser/unitprice/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)

	if err := migrator.RunMigrations(cfg.DatabaseURL, shell.FS); err != nil {
		log.Error("shell migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("shell migrations applied")
}
