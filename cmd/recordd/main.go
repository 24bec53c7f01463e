// Command recordd serves the records a recpick form searches.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"recpick/internal/config"
	"recpick/internal/server"
	"recpick/internal/store"
)

func main() {
	var (
		configPath string
		addr       string
		dbPath     string
		seedPath   string
		h2c        bool
	)
	flag.StringVar(&configPath, "c", config.FileName, "Path to the configuration file")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides the config)")
	flag.StringVar(&dbPath, "db", "", "SQLite database path (overrides the config)")
	flag.StringVar(&seedPath, "seed", "", "YAML file with records to load at startup (overrides the config)")
	flag.BoolVar(&h2c, "h2c", false, "Serve cleartext HTTP/2")
	flag.Parse()

	cfg := config.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.NewConfigService().LoadFromPath(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg = loaded
	}
	settings := cfg.Server
	if addr != "" {
		settings.Addr = addr
	}
	if dbPath != "" {
		settings.DBPath = dbPath
	}
	if seedPath != "" {
		settings.SeedPath = seedPath
	}
	settings.H2C = settings.H2C || h2c

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(settings.DBPath)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer st.Close()

	if err := seed(ctx, st, settings.SeedPath); err != nil {
		log.Fatalf("Error seeding store: %v", err)
	}

	if err := server.Run(ctx, server.Config{Addr: settings.Addr, H2C: settings.H2C}, server.NewRouter(st)); err != nil {
		log.Fatalf("Error running server: %v", err)
	}
}

// seed loads the seed file, or the built-in sample when the store is empty
func seed(ctx context.Context, st *store.Store, path string) error {
	if path != "" {
		n, err := st.SeedFromFile(ctx, path)
		if err != nil {
			return err
		}
		log.Printf("Seeded %d records from %s", n, path)
		return nil
	}

	page, err := st.Search(ctx, store.Query{Limit: 1})
	if err != nil {
		return err
	}
	if page.Total > 0 {
		return nil
	}
	records, err := store.SampleRecords()
	if err != nil {
		return err
	}
	if err := st.Upsert(ctx, records); err != nil {
		return err
	}
	log.Printf("Seeded %d sample records", len(records))
	return nil
}
