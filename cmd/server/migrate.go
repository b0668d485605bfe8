package main

import (
	"fmt"
	"time"

	"github.com/letsconnect/connect-backend/internal/config"
	"github.com/letsconnect/connect-backend/internal/infrastructure/database"
	"github.com/letsconnect/connect-backend/internal/infrastructure/logger"
	"github.com/letsconnect/connect-backend/internal/infrastructure/migration"
	"github.com/letsconnect/connect-backend/internal/usecase/auth"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user_id>",
	Short: "Sign a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewForEnvironment(cfg.Server.Env, cfg.Logging.Level)
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgresDB(cmd.Context(), &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migration.New(db.DB, log)
	if err != nil {
		return err
	}

	if args[0] == "down" {
		return m.Down()
	}
	return m.Up()
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to sign tokens in production")
	}

	token, expiresAt, err := auth.NewTokenVerifier(cfg.Auth.JWTSecret).IssueToken(args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
