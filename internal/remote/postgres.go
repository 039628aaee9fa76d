package remote

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgreSQL error codes
const (
	uniqueViolationCode  = "23505"
	notNullViolationCode = "23502"
)

// ErrInvalidEntry is returned when the database rejects an entry.
var ErrInvalidEntry = errors.New("invalid entry")

// Postgres implements EntryLog on a single entries table.
type Postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to databaseURL through the pgx driver and pings it.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// NewPostgres wraps an open database. If logger is nil, slog.Default is used.
func NewPostgres(db *sql.DB, logger *slog.Logger) *Postgres {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		db:     db,
		logger: logger.With(slog.String("component", "entry_log")),
	}
}

var _ EntryLog = (*Postgres)(nil)

func (p *Postgres) Insert(ctx context.Context, userID, id uuid.UUID, entryType string, payload json.RawMessage) (Entry, error) {
	e := Entry{
		ID:      id,
		UserID:  userID,
		Type:    entryType,
		Payload: payload,
	}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO entries (id, user_id, entry_type, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at`,
		e.ID, e.UserID, e.Type, string(payload)).Scan(&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// already inserted by an earlier attempt
		err = p.db.QueryRowContext(ctx,
			`SELECT created_at FROM entries WHERE id = $1`, e.ID).Scan(&e.CreatedAt)
	}
	if err != nil {
		p.logger.Error("failed to insert entry",
			slog.String("error", err.Error()),
			slog.String("entry_type", entryType),
			slog.String("user_id", userID.String()))
		return Entry{}, mapError(err)
	}

	p.logger.Debug("entry inserted",
		slog.String("entry_id", e.ID.String()),
		slog.String("entry_type", entryType))
	return e, nil
}

func (p *Postgres) QueryAll(ctx context.Context, userID uuid.UUID, entryType string) ([]Entry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, entry_type, payload, created_at
		 FROM entries
		 WHERE user_id = $1 AND entry_type = $2
		 ORDER BY created_at ASC, seq ASC`,
		userID, entryType)
	if err != nil {
		p.logger.Error("failed to query entries",
			slog.String("error", err.Error()),
			slog.String("entry_type", entryType))
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

// mapError maps database errors onto package errors, keeping the original.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode, notNullViolationCode:
			return fmt.Errorf("%w (%s): %v", ErrInvalidEntry, pgErr.Code, err)
		}
	}
	return err
}

// gooseLogger forwards goose output to slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf does not exit; goose returns the error to Migrate.
func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
