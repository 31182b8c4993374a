package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/qsplit-dev/qsplit/internal/config"
	"github.com/qsplit-dev/qsplit/internal/logging"
	"github.com/qsplit-dev/qsplit/internal/qonto"
	"github.com/qsplit-dev/qsplit/internal/secret"
	"github.com/qsplit-dev/qsplit/internal/store/postgres"
)

// app bundles the wired collaborators every subcommand needs: the
// environment config, the database-backed stores, the banking client and the
// interactive prompter.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	db       *pgxpool.Pool
	store    *postgres.Storage
	api      *qonto.Client
	prompter *prompter
}

// newApp loads the environment and connects everything. The caller must call
// close when done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)

	cipher, err := secret.NewCipher(cfg.AppKey)
	if err != nil {
		return nil, fmt.Errorf("deriving encryption key: %w", err)
	}

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    postgres.NewStorage(db, cipher),
		api:      qonto.NewClient(cfg.APIBaseURL, cfg.OrganizationSlug, cfg.SecretKey, logger),
		prompter: newPrompter(os.Stdin, os.Stdout),
	}, nil
}

func (a *app) close() {
	a.db.Close()
}
