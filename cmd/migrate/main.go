// migrate applies the embedded SQL migrations for the configured store.
package main

import (
	"flag"
	"fmt"
	"os"

	"provider-registration/backend/internal/config"
	"provider-registration/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	target := cfg.SQLitePath
	if cfg.DatabaseDriver == config.DriverPostgres {
		target = cfg.DatabaseURL
	}
	if err := migrate.Run(cfg.DatabaseDriver, target, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Printf("migrate %s: %s ok\n", cfg.DatabaseDriver, *direction)
}
