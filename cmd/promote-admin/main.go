package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/database"
	"github.com/sritlabs/sat-backend/internal/logger"
)

// Promotes an existing admin account to super admin by email. Useful after a
// fresh install when the first account was created without the flag.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: promote-admin <email>")
		os.Exit(1)
	}
	email := os.Args[1]

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx,
		`UPDATE admins SET super_admin = TRUE, updated_at = CURRENT_TIMESTAMP WHERE email = $1`,
		email,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to promote admin")
	}
	if tag.RowsAffected() == 0 {
		fmt.Printf("No admin found with email %s\n", email)
		os.Exit(1)
	}

	fmt.Printf("Success! %s is now a super admin.\n", email)
}
