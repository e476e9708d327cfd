// postgres реализует storage.Database поверх пула соединений pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/school-site/internal/storage"
)

// Storage хранилище на PostgreSQL.
type Storage struct {
	db *pgxpool.Pool
}

// New подключается к PostgreSQL и делает ping.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Ping нужен readiness-пробе.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Storage) Close() {
	s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// mapWriteErr переводит нарушения ограничений в сентинелы storage.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return storage.ErrAlreadyExists
	case pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
		return storage.ErrInvalidArgument
	}

	return err
}

// expectOne превращает "ни одна строка не затронута" в storage.ErrNotFound.
func expectOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

var _ storage.Database = (*Storage)(nil)
