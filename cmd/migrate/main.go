package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Plain-SQL migration runner. Files under the migrations directory are
// applied in lexical order and recorded in schema_migrations so reruns skip
// what is already in place.
func main() {
	_ = godotenv.Load()

	var migrationsDir string

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
	}
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "directory holding *.sql migration files")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), migrationsDir)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), migrationsDir)
		},
	}

	rootCmd.AddCommand(upCmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getPool(ctx context.Context) (*pgxpool.Pool, error) {
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL env var is missing")
	}
	return pgxpool.Connect(ctx, dbURL)
}

func listMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func appliedSet(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version    TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func runUp(ctx context.Context, dir string) error {
	pool, err := getPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := listMigrations(dir)
	if err != nil {
		return err
	}
	applied, err := appliedSet(ctx, pool)
	if err != nil {
		return err
	}

	pending := 0
	for _, name := range files {
		if applied[name] {
			continue
		}
		pending++

		sql, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		fmt.Printf("Applying migration: %s\n", name)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	if pending == 0 {
		fmt.Println("No pending migrations.")
	}
	return nil
}

func runStatus(ctx context.Context, dir string) error {
	pool, err := getPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := listMigrations(dir)
	if err != nil {
		return err
	}
	applied, err := appliedSet(ctx, pool)
	if err != nil {
		return err
	}

	for _, name := range files {
		state := "pending"
		if applied[name] {
			state = "applied"
		}
		fmt.Printf("%-10s %s\n", state, name)
	}
	return nil
}
