package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/porchlightgames/titandawn/internal/config"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/proxy"
	"github.com/porchlightgames/titandawn/internal/text"
)

func main() {
	configFile := flag.String("config", "data/titandawn.yaml", "Path to config YAML file")
	textFile := flag.String("text", "data/text.yaml", "Path to text YAML file")
	accountsDB := flag.String("accounts-db", "", "Override the accounts database path")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logConfig, _ := logger.LoadConfig(*configFile)
	logger.Initialize(logConfig)

	logger.Info("Starting Titandawn proxy server")

	if err := text.Initialize(*textFile); err != nil {
		logger.Warning("Text file not loaded, using built-in text", "path", *textFile, "error", err)
	}

	db, err := openAccountsDatabase(cfg, *accountsDB)
	if err != nil {
		logger.Error("Failed to open accounts database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	p := proxy.New(cfg, db)
	if err := p.Start(); err != nil {
		logger.Error("Failed to start proxy", "error", err)
		os.Exit(1)
	}

	logger.Info("Proxy server running", "address", p.Addr(), "world_link", cfg.Link.DialAddr)
	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal or an in-game @restart proxy
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		p.Shutdown()
	case <-p.Done():
	}

	logger.Info("Proxy server stopped")
}

// openAccountsDatabase opens the proxy's account store. The proxy keeps
// its own database file so it can authenticate players while the world
// is down; with the postgres driver both daemons share the server and
// the override is ignored.
func openAccountsDatabase(cfg *config.Config, override string) (*database.Database, error) {
	if cfg.Database.Driver == "postgres" {
		return database.OpenPostgres(cfg.Database.DSN)
	}

	path := cfg.Database.Path + ".accounts"
	if override != "" {
		path = override
	}
	return database.Open(path)
}
