package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"legalassist-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// Tables in dependency order; drops run in reverse
var tables = []struct {
	name string
	ddl  string
}{
	{
		name: "users",
		ddl: `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
	{
		name: "sessions",
		ddl: `
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
	},
	{
		name: "saved_cases",
		ddl: `
CREATE TABLE IF NOT EXISTS saved_cases (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id VARCHAR(64) NOT NULL,
    title TEXT NOT NULL,
    court_name VARCHAR(255) NOT NULL,
    -- full analysis result serialized as JSON
    notes TEXT NOT NULL,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    decision_date TIMESTAMPTZ NOT NULL,
    storage_path TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_saved_cases_user_id ON saved_cases(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_saved_cases_user_title ON saved_cases(user_id, title);`,
	},
	{
		name: "search_history",
		ddl: `
CREATE TABLE IF NOT EXISTS search_history (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    query TEXT NOT NULL,
    results_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_search_history_user_id ON search_history(user_id, created_at DESC);`,
	},
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFilePath string
	var drop bool

	cmd := &cobra.Command{
		Use:          "create-schema",
		Short:        "Create the users, sessions, saved_cases and search_history tables",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			cfg, err := config.Load(configFilePath)
			if err != nil {
				return err
			}
			return createSchema(cmd.Context(), cfg.Database.URL, drop)
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "", "optional config file")
	cmd.Flags().BoolVar(&drop, "drop", false, "drop existing tables first (development only)")
	return cmd
}

func createSchema(ctx context.Context, connString string, drop bool) error {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if drop {
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+tables[i].name+" CASCADE"); err != nil {
				return fmt.Errorf("failed to drop %s: %w", tables[i].name, err)
			}
			log.Printf("✓ Dropped existing %s table (if any)", tables[i].name)
		}
	}

	for _, t := range tables {
		if _, err := pool.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.name, err)
		}
		log.Printf("✓ %s table ready", t.name)
	}

	fmt.Println("✅ Schema created successfully!")
	return nil
}
