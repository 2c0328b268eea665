package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/repository"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	fmt.Printf("Migrating %s store...\n", cfg.Storage.Driver)

	if err := repository.Migrate(context.Background(), cfg.Storage); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Store is up to date")
}
