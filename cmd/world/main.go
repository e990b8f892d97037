package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/porchlightgames/titandawn/internal/config"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/game"
	"github.com/porchlightgames/titandawn/internal/help"
	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/parent"
)

func main() {
	configFile := flag.String("config", "data/titandawn.yaml", "Path to config YAML file")
	helpFile := flag.String("help", "data/help.yaml", "Path to help YAML file")
	makeAdmin := flag.String("make-admin", "", "Promote an account's player object to admin and exit (requires username)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Handle --make-admin flag (promotes the player object and exits)
	if *makeAdmin != "" {
		handleMakeAdmin(cfg, *makeAdmin)
		return
	}

	logConfig, _ := logger.LoadConfig(*configFile)
	logger.Initialize(logConfig)

	logger.Info("Starting Titandawn world server", "version", game.Version)

	if err := help.Initialize(*helpFile); err != nil {
		logger.Warning("Help file not loaded, using built-in topics", "path", *helpFile, "error", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	world, err := game.New(cfg, db)
	if err != nil {
		logger.Error("Failed to build world", "error", err)
		os.Exit(1)
	}

	if err := world.Start(); err != nil {
		logger.Error("Failed to start link server", "error", err)
		os.Exit(1)
	}

	logger.Info("World server running", "link_address", world.LinkAddr())
	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal or an in-game @restart
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutting down world server")
		world.Shutdown()
	case <-world.Done():
	}

	logger.Info("World server stopped")
}

func openDatabase(cfg *config.Config) (*database.Database, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return database.OpenPostgres(cfg.Database.DSN)
	default:
		return database.Open(cfg.Database.Path)
	}
}

// handleMakeAdmin re-parents the named account's player object to the
// admin parent and exits.
func handleMakeAdmin(cfg *config.Config, username string) {
	db, err := openDatabase(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	world, err := game.New(cfg, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load world: %v\n", err)
		os.Exit(1)
	}

	obj := world.Store().FindControlledBy(username)
	if obj == nil {
		fmt.Fprintf(os.Stderr, "Error: no player object controlled by '%s'\n", username)
		os.Exit(1)
	}

	if obj.Parent() == parent.Admin {
		fmt.Printf("'%s' is already an admin.\n", username)
		return
	}

	obj.SetParent(parent.Admin)
	if err := obj.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("'%s' (#%d) is now an admin.\n", username, obj.ID())
}
