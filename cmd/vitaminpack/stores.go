package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/terraincognita07/vitaminpack/internal/config"
	"github.com/terraincognita07/vitaminpack/internal/db"
	"gorm.io/gorm"
)

type stores struct {
	sqlite   *gorm.DB
	postgres *sqlx.DB
}

// openStores opens SQLite, which always holds users and refresh tokens, and
// the Postgres profile store when it is configured.
func openStores(ctx context.Context) (*stores, error) {
	sqlite, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	opened := &stores{sqlite: sqlite}

	if cfg.ProfileStore == config.ProfileStorePostgres {
		postgres, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			opened.Close()
			return nil, fmt.Errorf("profile store init failed: %w", err)
		}
		opened.postgres = postgres
	}
	return opened, nil
}

func (s *stores) Repositories() *db.Repositories {
	var profiles db.ProfileStore
	if s.postgres != nil {
		profiles = db.NewPostgresProfileRepository(s.postgres)
	}
	return db.NewRepositories(s.sqlite, profiles)
}

func (s *stores) Close() {
	if s.postgres != nil {
		_ = s.postgres.Close()
	}
	if sqlDB, err := s.sqlite.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
