package main

import (
	"context"
	"flag"
	"log"
	"os"

	"nixtia-store/internal/config"
	"nixtia-store/internal/db"
	"nixtia-store/internal/migrate"
)

func main() {
	var (
		down   int
		status bool
	)
	flag.IntVar(&down, "down", 0, "Roll back this many migrations instead of applying")
	flag.BoolVar(&status, "status", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	switch {
	case status:
		st, err := migrate.CurrentStatus(ctx, pool)
		if err != nil {
			logger.Fatalf("migration status: %v", err)
		}
		if !st.Applied {
			logger.Println("no migrations applied")
			return
		}
		logger.Printf("schema version=%d dirty=%t", st.Version, st.Dirty)
	case down > 0:
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			logger.Fatalf("rollback migrations: %v", err)
		}
		logger.Printf("rolled back %d migration(s)", down)
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}
}
