package postgres

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/pkg/money"
)

// Migrations holds the schema, applied by pkg/postgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

type scannable interface {
	Scan(dest ...any) error
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseCurrency(code string) (money.Currency, error) {
	if code == "" {
		return money.Currency{}, nil
	}
	c, err := money.NewCurrency(code)
	if err != nil {
		return money.Currency{}, fmt.Errorf("parse currency: %w", err)
	}
	return c, nil
}

// notFound turns pgx.ErrNoRows into model.ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, model.ErrNotFound)
	}
	return err
}
