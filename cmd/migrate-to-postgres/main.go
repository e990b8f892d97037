// migrate-to-postgres migrates world objects and accounts from SQLite
// to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/titandawn.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user titandawn \
//	    -pg-password titandawn \
//	    -pg-database titandawn
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/porchlightgames/titandawn/internal/database"
)

func main() {
	// Parse command-line flags
	sqlitePath := flag.String("sqlite", "data/titandawn.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "titandawn", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "titandawn", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "titandawn", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	// Open SQLite database
	log.Printf("Opening SQLite database: %s", *sqlitePath)
	sqliteDB, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer sqliteDB.Close()

	// Build PostgreSQL connection string. Opening it also runs the
	// schema migrations, so the target tables are ready.
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		*pgHost, *pgPort, *pgUser, *pgPassword, *pgDatabase, *pgSSLMode,
	)

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	pgDB, err := database.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer pgDB.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	// Migrate world objects
	objects, err := sqliteDB.LoadObjects()
	if err != nil {
		log.Fatalf("Failed to load objects: %v", err)
	}
	log.Printf("Migrating %d objects...", len(objects))

	migrated := 0
	for _, doc := range objects {
		if *dryRun {
			log.Printf("  would migrate object #%d (%s)", doc.ID, doc.Parent)
			continue
		}
		if err := pgDB.SaveObject(doc); err != nil {
			log.Fatalf("Failed to migrate object #%d: %v", doc.ID, err)
		}
		migrated++
	}

	// Migrate accounts
	accounts, err := sqliteDB.AllAccounts()
	if err != nil {
		log.Fatalf("Failed to load accounts: %v", err)
	}
	log.Printf("Migrating %d accounts...", len(accounts))

	migratedAccounts := 0
	for _, account := range accounts {
		if *dryRun {
			log.Printf("  would migrate account %q", account.Username)
			continue
		}
		if err := pgDB.ImportAccount(account); err != nil {
			log.Fatalf("Failed to migrate account %q: %v", account.Username, err)
		}
		migratedAccounts++
	}

	if *dryRun {
		log.Println("Dry run complete. No changes were made.")
		return
	}

	log.Printf("Migration complete: %d objects, %d accounts", migrated, migratedAccounts)
}
