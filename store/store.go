// Package store persists operational data in SQLite: container unload
// events, ramp vehicle operations and the query audit log. It also derives
// the aggregate metrics consumed by the structured handlers and the metrics
// summary embedded into consensus prompts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// dateKey is the canonical storage format for container event dates.
// Lexicographic order equals chronological order, so range scans are plain
// string comparisons.
const dateKey = "20060102"

const schema = `
CREATE TABLE IF NOT EXISTS container_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	unloaded_on TEXT NOT NULL,
	line_code   TEXT NOT NULL DEFAULT '',
	quantity    REAL NOT NULL DEFAULT 1,
	ship_name   TEXT NOT NULL DEFAULT '',
	manifest    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_container_events_unloaded_on
	ON container_events(unloaded_on);

CREATE TABLE IF NOT EXISTS vehicle_events (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	operation_date   TEXT NOT NULL,
	ramp_id          TEXT NOT NULL DEFAULT '',
	shift            TEXT NOT NULL DEFAULT '',
	vehicles_count   INTEGER NOT NULL DEFAULT 0,
	containers_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_vehicle_events_operation_date
	ON vehicle_events(operation_date);

CREATE TABLE IF NOT EXISTS query_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id       TEXT NOT NULL,
	user_text     TEXT NOT NULL,
	command       TEXT NOT NULL DEFAULT '',
	params        TEXT NOT NULL DEFAULT '{}',
	response_text TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_log_chat
	ON query_log(chat_id, created_at);
`

// ContainerEvent is one container unload record.
type ContainerEvent struct {
	UnloadedOn time.Time
	LineCode   string
	Quantity   float64
	ShipName   string
	Manifest   string
}

// VehicleEvent is one ramp operation record.
type VehicleEvent struct {
	OperationDate   time.Time
	RampID          string
	Shift           string
	VehiclesCount   int
	ContainersCount int
}

// QueryRecord is one audited request/response pair.
type QueryRecord struct {
	ChatID       string
	UserText     string
	Command      string
	Params       map[string]any
	ResponseText string
	CreatedAt    time.Time
}

// Exchange is one prior user/bot exchange, oldest data first when returned
// in a slice.
type Exchange struct {
	UserText     string
	ResponseText string
}

// Comparison holds the container counts of two months and their difference
// (first minus second).
type Comparison struct {
	Count1     int
	Count2     int
	Difference int
}

// Store is a SQLite-backed implementation of the bot's data access layer.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddContainerEvent inserts one container unload record.
func (s *Store) AddContainerEvent(ctx context.Context, event ContainerEvent) error {
	if event.UnloadedOn.IsZero() {
		return fmt.Errorf("unload date is required")
	}
	quantity := event.Quantity
	if quantity == 0 {
		quantity = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO container_events (unloaded_on, line_code, quantity, ship_name, manifest)
		 VALUES (?, ?, ?, ?, ?)`,
		event.UnloadedOn.Format(dateKey), event.LineCode, quantity, event.ShipName, event.Manifest)
	if err != nil {
		return fmt.Errorf("insert container event: %w", err)
	}
	return nil
}

// AddVehicleEvent inserts one ramp operation record.
func (s *Store) AddVehicleEvent(ctx context.Context, event VehicleEvent) error {
	if event.OperationDate.IsZero() {
		return fmt.Errorf("operation date is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicle_events (operation_date, ramp_id, shift, vehicles_count, containers_count)
		 VALUES (?, ?, ?, ?, ?)`,
		event.OperationDate.Format(dateKey), event.RampID, event.Shift, event.VehiclesCount, event.ContainersCount)
	if err != nil {
		return fmt.Errorf("insert vehicle event: %w", err)
	}
	return nil
}

// DailyContainerCount counts container events on a single day.
func (s *Store) DailyContainerCount(ctx context.Context, day time.Time) (int, error) {
	return s.ContainerCountBetween(ctx, day, day)
}

// ContainerCountBetween counts container events between two dates inclusive.
// A reversed range is normalized rather than rejected.
func (s *Store) ContainerCountBetween(ctx context.Context, start, end time.Time) (int, error) {
	if end.Before(start) {
		start, end = end, start
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM container_events WHERE unloaded_on BETWEEN ? AND ?`,
		start.Format(dateKey), end.Format(dateKey)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count containers: %w", err)
	}
	return count, nil
}

// VehicleCountBetween sums vehicle counts across ramp operations between two
// dates inclusive.
func (s *Store) VehicleCountBetween(ctx context.Context, start, end time.Time) (int, error) {
	if end.Before(start) {
		start, end = end, start
	}
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(vehicles_count), 0) FROM vehicle_events WHERE operation_date BETWEEN ? AND ?`,
		start.Format(dateKey), end.Format(dateKey)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum vehicles: %w", err)
	}
	return total, nil
}

// MonthlyContainerCount counts container events in one calendar month.
func (s *Store) MonthlyContainerCount(ctx context.Context, month, year int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month out of range: %d", month)
	}
	prefix := fmt.Sprintf("%04d%02d", year, month)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM container_events WHERE unloaded_on LIKE ? || '%'`,
		prefix).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count monthly containers: %w", err)
	}
	return count, nil
}

// MonthlyComparison counts container events in two months and reports the
// difference as first minus second.
func (s *Store) MonthlyComparison(ctx context.Context, month1, year1, month2, year2 int) (Comparison, error) {
	count1, err := s.MonthlyContainerCount(ctx, month1, year1)
	if err != nil {
		return Comparison{}, err
	}
	count2, err := s.MonthlyContainerCount(ctx, month2, year2)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Count1: count1, Count2: count2, Difference: count1 - count2}, nil
}

// LogQuery appends one request/response pair to the audit log. Params are
// stored as JSON.
func (s *Store) LogQuery(ctx context.Context, record QueryRecord) error {
	if record.ChatID == "" {
		return fmt.Errorf("chat id is required")
	}
	params := record.Params
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO query_log (chat_id, user_text, command, params, response_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ChatID, record.UserText, record.Command, string(encoded),
		record.ResponseText, createdAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert query log: %w", err)
	}
	return nil
}

// RecentExchanges returns up to limit prior exchanges for one chat, oldest
// first, so callers can embed them as conversational context.
func (s *Store) RecentExchanges(ctx context.Context, chatID string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_text, response_text FROM query_log
		 WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent exchanges: %w", err)
	}
	defer rows.Close()

	var newestFirst []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.UserText, &ex.ResponseText); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		newestFirst = append(newestFirst, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	for i, j := 0, len(newestFirst)-1; i < j; i, j = i+1, j-1 {
		newestFirst[i], newestFirst[j] = newestFirst[j], newestFirst[i]
	}
	return newestFirst, nil
}
