// Command debugload loads a world database the way the world daemon
// does and prints a summary of the object graph. Useful for checking a
// database offline after migrations or crashes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/porchlightgames/titandawn/internal/config"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
	"github.com/porchlightgames/titandawn/internal/store"
)

func main() {
	configFile := flag.String("config", "data/titandawn.yaml", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	var db *database.Database
	if cfg.Database.Driver == "postgres" {
		db, err = database.OpenPostgres(cfg.Database.DSN)
	} else {
		db, err = database.Open(cfg.Database.Path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening database:", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := &object.Services{}
	s := store.New(db, parent.Default(), svc)
	if err := s.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Error loading world:", err)
		os.Exit(1)
	}

	byType := map[string]int{}
	var rooms []object.Object
	for _, obj := range allObjects(s) {
		byType[obj.BaseType()]++
		if obj.BaseType() == object.TypeRoom {
			rooms = append(rooms, obj)
		}
	}

	fmt.Println("World loaded.")
	for _, baseType := range []string{object.TypeRoom, object.TypeThing, object.TypeExit, object.TypePlayer} {
		fmt.Printf("  %-8s %d\n", baseType, byType[baseType])
	}

	fmt.Println("\nRooms:")
	for _, room := range rooms {
		contents := s.ContentsOf(room)
		fmt.Printf("  #%d %s (%d contents)\n", room.ID(), room.Name(), len(contents))
		for _, obj := range contents {
			fmt.Printf("      #%d %s [%s]\n", obj.ID(), obj.Name(), obj.BaseType())
		}
	}
}

// allObjects walks the full dbref space. The store has no bulk
// accessor; ids are dense enough for a debug tool to probe.
func allObjects(s *store.Store) []object.Object {
	var objects []object.Object
	for id := int64(1); id <= s.HighestID(); id++ {
		if obj, err := s.Get(id); err == nil {
			objects = append(objects, obj)
		}
	}
	return objects
}
