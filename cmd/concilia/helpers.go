package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/concilia-dev/concilia/internal/config"
	"github.com/concilia-dev/concilia/internal/matching"
	"github.com/concilia-dev/concilia/internal/service"
	"github.com/concilia-dev/concilia/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initMatchEngine builds a matching engine over the stored active templates.
func initMatchEngine(ctx context.Context, store service.Storage) (*matching.Engine, error) {
	templates, err := store.GetActiveTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return matching.NewEngine(templates), nil
}
