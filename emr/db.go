package emr

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN          string        `split_words:"true" required:"true"`
	MaxOpenConns int           `split_words:"true" default:"8"`
	MaxIdleConns int           `split_words:"true" default:"4"`
	ConnLifetime time.Duration `split_words:"true" default:"30m"`
}

func Open(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("emr: database dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnLifetime)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// Migrate creates the record tables when they do not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Patient)(nil),
		(*Doctor)(nil),
		(*Booking)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("emr: create table for %T: %w", model, err)
		}
	}
	return nil
}
