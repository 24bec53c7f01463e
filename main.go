package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"recpick/internal/collection"
	"recpick/internal/config"
	"recpick/internal/eventbus"
	"recpick/internal/store"
	"recpick/internal/ui"
)

func main() {
	var (
		configPath string
		baseURL    string
		offline    bool
	)
	flag.StringVar(&configPath, "c", config.FileName, "Path to the configuration file")
	flag.StringVar(&baseURL, "url", "", "Record service base URL (overrides the config)")
	flag.BoolVar(&offline, "offline", false, "Search the built-in sample records instead of a record service")
	flag.Parse()

	// Set up logging
	logFile, err := tea.LogToFile("recpick.log", "recpick")
	if err != nil {
		fmt.Printf("Could not open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bus := eventbus.New()
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigLoadedEvent); ok {
			log.Printf("Loaded config from %s (%d fields)", event.Path, event.Fields)
		}
	})
	bus.Subscribe(eventbus.EventSelectionChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SelectionChangedEvent); ok {
			log.Printf("Selection changed: %s = %q (%s)", event.Field, event.ID, event.Name)
		}
	})

	configSvc := config.NewConfigServiceWithBus(bus)
	cfg, err := loadConfig(configSvc, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.Remote.BaseURL = baseURL
	}

	// Persist the last selection as the next run's initial values
	bus.Subscribe(eventbus.EventConfigChanged, func(e eventbus.DomainEvent) {
		event, ok := e.(eventbus.ConfigChangedEvent)
		if !ok {
			return
		}
		for i := range cfg.Fields {
			cfg.Fields[i].InitialID = event.InitialIDs[cfg.Fields[i].Name]
		}
		if err := configSvc.SaveToPath(cfg, configPath); err != nil {
			log.Printf("Failed to save config: %v", err)
		} else {
			log.Printf("Config saved to %s", configPath)
		}
	})

	source, err := newSource(cfg, offline)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	uiModel, err := ui.NewModel(bus, cfg, source)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithContext(ctx))
	uiModel.SetProgram(p)

	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Printf("Error running program: %v", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Printf("UI exited normally")
}

// loadConfig reads the config file when it exists and falls back to the
// user config directory otherwise
func loadConfig(configSvc config.ConfigService, path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return configSvc.LoadFromPath(path)
	}
	return configSvc.Load()
}

// newSource picks the collections the pickers search
func newSource(cfg *config.Config, offline bool) (ui.SourceFactory, error) {
	if offline {
		records, err := store.SampleRecords()
		if err != nil {
			return nil, err
		}
		items := make([]*collection.Item, 0, len(records))
		for _, r := range records {
			items = append(items, collection.NewItem(map[string]any{
				"id":    r.ID,
				"name":  r.Name,
				"kind":  r.Kind,
				"email": r.Email,
			}))
		}
		log.Printf("Offline mode: %d sample records", len(items))
		return func(f config.FieldConfig) (collection.Collection, collection.Record) {
			coll := collection.NewMemory(items,
				collection.WithSearchKey(f.SearchParam),
				collection.WithLabelAttr(f.LabelField),
			)
			return coll, collection.NewMemoryRecord(coll)
		}, nil
	}

	client, err := collection.NewHTTPClient(collection.ClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Search.Timeout(),
		HTTP2:   cfg.Remote.HTTP2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	remote := collection.RemoteConfig{
		BaseURL:     cfg.Remote.BaseURL,
		RecordsPath: cfg.Remote.RecordsPath,
		ResultsPath: cfg.Remote.ResultsPath,
		IDField:     cfg.Remote.IDField,
		LimitParam:  cfg.Remote.LimitParam,
		OffsetParam: cfg.Remote.OffsetParam,
	}
	log.Printf("Searching %s (http2=%t)", cfg.Remote.BaseURL, cfg.Remote.HTTP2)
	return func(config.FieldConfig) (collection.Collection, collection.Record) {
		return collection.NewHTTP(client, remote), collection.NewHTTPRecord(client, remote)
	}, nil
}
