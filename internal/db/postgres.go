package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/terraincognita07/vitaminpack/internal/models"
	embeddedmigrations "github.com/terraincognita07/vitaminpack/migrations"
)

// OpenPostgres connects the optional Postgres profile store and makes sure
// its schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	database, err := sqlx.ConnectContext(connectCtx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	database.SetMaxOpenConns(5)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(30 * time.Minute)

	if err := ensurePostgresSchema(connectCtx, database); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

func ensurePostgresSchema(ctx context.Context, database *sqlx.DB) error {
	return runMigrations(ctx, sqlxMigrationTarget{database: database}, embeddedmigrations.Postgres, "postgres")
}

type PostgresProfileRepository struct {
	database *sqlx.DB
}

func NewPostgresProfileRepository(database *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{database: database}
}

type profileRow struct {
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	HealthGoals []byte    `db:"health_goals"`
	Diet        string    `db:"diet"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (repo *PostgresProfileRepository) Exists(ctx context.Context, userID uint) (bool, error) {
	var exists bool
	err := repo.database.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`, userID)
	return exists, err
}

func (repo *PostgresProfileRepository) FindByUserID(ctx context.Context, userID uint) (models.Profile, error) {
	var row profileRow
	err := repo.database.GetContext(ctx, &row, `
SELECT user_id, display_name, health_goals, diet, created_at, updated_at
FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}

	goals := make([]string, 0)
	if len(row.HealthGoals) > 0 {
		if err := json.Unmarshal(row.HealthGoals, &goals); err != nil {
			return models.Profile{}, fmt.Errorf("decode health goals: %w", err)
		}
	}
	return models.Profile{
		UserID:      uint(row.UserID),
		DisplayName: row.DisplayName,
		HealthGoals: goals,
		Diet:        row.Diet,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func (repo *PostgresProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	goals := profile.HealthGoals
	if goals == nil {
		goals = []string{}
	}
	encodedGoals, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encode health goals: %w", err)
	}

	_, err = repo.database.NamedExecContext(ctx, `
INSERT INTO profiles (user_id, display_name, health_goals, diet)
VALUES (:user_id, :display_name, :health_goals, :diet)
ON CONFLICT (user_id) DO UPDATE SET
  display_name = EXCLUDED.display_name,
  health_goals = EXCLUDED.health_goals,
  diet = EXCLUDED.diet,
  updated_at = NOW()`, map[string]any{
		"user_id":      int64(profile.UserID),
		"display_name": profile.DisplayName,
		"health_goals": string(encodedGoals),
		"diet":         profile.Diet,
	})
	return err
}
