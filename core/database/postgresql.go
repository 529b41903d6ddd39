package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reservation-api/core/constants"
	"reservation-api/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	NamedQueryContext(ctx context.Context, query string, arg any) (*sqlx.Rows, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	BeginTxx(ctx context.Context) (*sqlx.Tx, error)
	SQLx() *sqlx.DB
}

type Database struct {
	db   *sql.DB
	sqlx *sqlx.DB
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

var instance *Database

func GetDB() IDatabase {
	return instance
}

func InitDB(config DatabaseConfig) (*Database, error) {
	logger.Info("Initializing database...")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, constants.DatabaseSSLMode)

	sqlxDB, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := sqlxDB.DB
	sqlDB.SetMaxOpenConns(constants.DatabaseMaxOpenConns)
	sqlDB.SetMaxIdleConns(constants.DatabaseMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(constants.DatabaseConnMaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &Database{
		db:   sqlDB,
		sqlx: sqlxDB,
	}

	if err := db.migrate(context.Background()); err != nil {
		return nil, err
	}

	logger.Info("Database initialized successfully",
		"host", config.Host,
		"port", config.Port,
		"database", config.DBName,
		"user", config.User,
		"maxOpenConns", constants.DatabaseMaxOpenConns,
		"maxIdleConns", constants.DatabaseMaxIdleConns,
		"connMaxLifetime", constants.DatabaseConnMaxLifetime,
	)

	instance = db
	return db, nil
}

// migrate bootstraps the schema. Every statement is idempotent so startup is
// safe to repeat. The partial exclusion constraint is the mechanism behind
// the no-double-booking guarantee: Postgres rejects any insert whose
// [start_time, end_time) range overlaps an existing PENDING row for the same
// resource, atomically with the insert itself.
func (d *Database) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$ BEGIN
			CREATE TYPE reservation_status AS ENUM ('PENDING', 'COMPLETE', 'CANCELLED');
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			resource_id varchar NOT NULL,
			user_id     varchar NOT NULL,
			start_time  timestamptz NOT NULL,
			end_time    timestamptz NOT NULL,
			timezone    varchar NOT NULL,
			status      reservation_status NOT NULL DEFAULT 'PENDING',
			created_at  timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_resource_id ON reservations (resource_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations (status)`,
		`DO $$ BEGIN
			ALTER TABLE reservations
			ADD CONSTRAINT no_overlapping_reservations
			EXCLUDE USING GIST (
				resource_id WITH =,
				tstzrange(start_time, end_time) WITH &&
			) WHERE (status = 'PENDING');
		EXCEPTION WHEN duplicate_table OR duplicate_object THEN NULL;
		END $$`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id    varchar NOT NULL,
			title      varchar NOT NULL,
			message    text NOT NULL,
			type       varchar NOT NULL,
			data       jsonb,
			is_read    boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
	}

	for _, stmt := range statements {
		if _, err := d.sqlx.ExecContext(ctx, stmt); err != nil {
			logger.Error("Database:Migrate:Error", "error", err)
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	logger.Info("Database schema is up to date")
	return nil
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sqlx.ExecContext(ctx, query, args...)
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Database) NamedQueryContext(ctx context.Context, query string, arg any) (*sqlx.Rows, error) {
	return d.sqlx.NamedQueryContext(ctx, query, arg)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return d.sqlx.BeginTxx(ctx, nil)
}

func (d *Database) SQLx() *sqlx.DB {
	return d.sqlx
}
