// Package audit keeps an append-only trail of booking lifecycle
// transitions in SQLite, independent of the soft-fail key-value store.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"fleetbook/internal/events"
)

// Entry is one recorded lifecycle transition.
type Entry struct {
	ID        int64     `json:"id"`
	BookingID string    `json:"booking_id"`
	VehicleID string    `json:"vehicle_id"`
	Event     string    `json:"event"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Trail is the SQLite-backed audit log.
type Trail struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// New opens (or creates) the audit database at path.
func New(path string, logger *zerolog.Logger) (*Trail, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect audit database: %w", err)
	}

	t := &Trail{db: db, logger: logger}
	if err := t.createTables(); err != nil {
		return nil, fmt.Errorf("create audit tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("audit trail initialized")
	return t, nil
}

func (t *Trail) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS booking_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			booking_id TEXT NOT NULL,
			vehicle_id TEXT NOT NULL,
			event TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_events_booking ON booking_events(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_events_created ON booking_events(created_at)`,
	}
	for _, query := range queries {
		if _, err := t.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %v", query, err)
		}
	}
	return nil
}

// Record appends one transition.
func (t *Trail) Record(ctx context.Context, e events.Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO booking_events (booking_id, vehicle_id, event, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.BookingID, e.VehicleID, e.Type, e.Status, at,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Subscribe wires the trail onto the event bus for all lifecycle events.
// Recording failures are logged, not propagated, so a broken audit disk
// never blocks bookings.
func (t *Trail) Subscribe(bus *events.Bus) {
	handler := func(e events.Event) error {
		if err := t.Record(context.Background(), e); err != nil {
			t.logger.Error().Err(err).Str("booking_id", e.BookingID).Msg("audit record failed")
		}
		return nil
	}
	bus.Subscribe(events.BookingCreated, handler)
	bus.Subscribe(events.BookingCancelled, handler)
	bus.Subscribe(events.BookingCompleted, handler)
}

// ListByBooking returns the transitions recorded for one booking, oldest
// first.
func (t *Trail) ListByBooking(ctx context.Context, bookingID string) ([]Entry, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, booking_id, vehicle_id, event, status, created_at
		FROM booking_events WHERE booking_id = ? ORDER BY id`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Recent returns the latest transitions across all bookings, newest first.
func (t *Trail) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, booking_id, vehicle_id, event, status, created_at
		FROM booking_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.VehicleID, &e.Event, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ping checks the underlying database connection.
func (t *Trail) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close releases the database handle.
func (t *Trail) Close() error {
	return t.db.Close()
}
