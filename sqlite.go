package innerlife

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	event_id      TEXT PRIMARY KEY,
	category      TEXT NOT NULL,
	summary       TEXT NOT NULL,
	intensity     INTEGER NOT NULL,
	mood_impact   TEXT NOT NULL,
	energy_impact TEXT NOT NULL,
	stress_impact TEXT NOT NULL,
	timestamp     TIMESTAMP NOT NULL,
	status        TEXT NOT NULL,
	processed_at  TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_status    ON events(status, timestamp);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);

CREATE TABLE IF NOT EXISTS trait_states (
	trait_name         TEXT PRIMARY KEY,
	value              TEXT NOT NULL,
	numeric_value      REAL NOT NULL,
	trend              TEXT NOT NULL,
	last_change_reason TEXT NOT NULL,
	last_event_id      TEXT,
	last_updated       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS state_changes (
	id             TEXT PRIMARY KEY,
	event_id       TEXT NOT NULL,
	trait_name     TEXT NOT NULL,
	previous_value REAL NOT NULL,
	new_value      REAL NOT NULL,
	change_amount  REAL NOT NULL,
	reason         TEXT NOT NULL,
	timestamp      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_changes_event ON state_changes(event_id);
CREATE INDEX IF NOT EXISTS idx_changes_trait ON state_changes(trait_name, timestamp);
`

// SQLiteRepository persists events, trait states, and the audit trail in
// a local SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database at path
// and applies the schema. The connection uses WAL for concurrent reads.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error { return r.db.Close() }

func (r *SQLiteRepository) CreateEvent(ctx context.Context, candidate CandidateEvent) (*PersistedEvent, error) {
	ev := &PersistedEvent{
		EventID:      uuid.New().String(),
		Category:     candidate.Category,
		Summary:      candidate.Summary,
		Intensity:    candidate.Intensity,
		MoodImpact:   candidate.MoodImpact,
		EnergyImpact: candidate.EnergyImpact,
		StressImpact: candidate.StressImpact,
		Timestamp:    r.now().UTC(),
		Status:       StatusUnprocessed,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (event_id, category, summary, intensity, mood_impact, energy_impact, stress_impact, timestamp, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, string(ev.Category), ev.Summary, ev.Intensity,
		string(ev.MoodImpact), string(ev.EnergyImpact), string(ev.StressImpact),
		ev.Timestamp, string(ev.Status))
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}

const eventColumns = `event_id, category, summary, intensity, mood_impact, energy_impact, stress_impact, timestamp, status, processed_at`

func scanEvent(row interface{ Scan(...any) error }) (*PersistedEvent, error) {
	var (
		ev          PersistedEvent
		category    string
		mood        string
		energy      string
		stress      string
		status      string
		processedAt sql.NullTime
	)
	err := row.Scan(&ev.EventID, &category, &ev.Summary, &ev.Intensity,
		&mood, &energy, &stress, &ev.Timestamp, &status, &processedAt)
	if err != nil {
		return nil, err
	}
	ev.Category = EventCategory(category)
	ev.MoodImpact = MoodImpact(mood)
	ev.EnergyImpact = ImpactLevel(energy)
	ev.StressImpact = ImpactLevel(stress)
	ev.Status = EventStatus(status)
	if processedAt.Valid {
		t := processedAt.Time
		ev.ProcessedAt = &t
	}
	return &ev, nil
}

func (r *SQLiteRepository) Event(ctx context.Context, eventID string) (*PersistedEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_id = ?`, eventID)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return ev, nil
}

func (r *SQLiteRepository) UnprocessedEvents(ctx context.Context, limit int) ([]*PersistedEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE status = ? ORDER BY timestamp ASC LIMIT ?`,
		string(StatusUnprocessed), limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	return collectEvents(rows)
}

func (r *SQLiteRepository) EventsSince(ctx context.Context, since time.Time, limit int, category EventCategory) ([]*PersistedEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	var (
		rows *sql.Rows
		err  error
	)
	if category == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events WHERE timestamp >= ? ORDER BY timestamp DESC LIMIT ?`,
			since.UTC(), limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events WHERE timestamp >= ? AND category = ? ORDER BY timestamp DESC LIMIT ?`,
			since.UTC(), string(category), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query events since: %w", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*PersistedEvent, error) {
	defer rows.Close()
	var out []*PersistedEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkEventProcessed(ctx context.Context, eventID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET status = ?, processed_at = ? WHERE event_id = ?`,
		string(StatusProcessed), at.UTC(), eventID)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) EventCounts(ctx context.Context) (map[EventCategory]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM events GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query event counts: %w", err)
	}
	defer rows.Close()

	out := make(map[EventCategory]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		out[EventCategory(category)] = n
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) TraitState(ctx context.Context, name string) (*TraitState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT trait_name, value, numeric_value, trend, last_change_reason, last_event_id, last_updated
		FROM trait_states WHERE trait_name = ?`, name)
	st, err := scanTraitState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query trait state: %w", err)
	}
	return st, nil
}

func scanTraitState(row interface{ Scan(...any) error }) (*TraitState, error) {
	var (
		st          TraitState
		trend       string
		lastEventID sql.NullString
	)
	err := row.Scan(&st.TraitName, &st.Value, &st.NumericValue, &trend,
		&st.LastChangeReason, &lastEventID, &st.LastUpdated)
	if err != nil {
		return nil, err
	}
	st.Trend = Trend(trend)
	st.LastEventID = lastEventID.String
	return &st, nil
}

func (r *SQLiteRepository) AllTraitStates(ctx context.Context) ([]*TraitState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trait_name, value, numeric_value, trend, last_change_reason, last_event_id, last_updated
		FROM trait_states ORDER BY trait_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query trait states: %w", err)
	}
	defer rows.Close()

	var out []*TraitState
	for rows.Next() {
		st, err := scanTraitState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trait state: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertTraitState(ctx context.Context, state *TraitState) error {
	var lastEventID any
	if state.LastEventID != "" {
		lastEventID = state.LastEventID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trait_states (trait_name, value, numeric_value, trend, last_change_reason, last_event_id, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trait_name) DO UPDATE SET
			value = excluded.value,
			numeric_value = excluded.numeric_value,
			trend = excluded.trend,
			last_change_reason = excluded.last_change_reason,
			last_event_id = excluded.last_event_id,
			last_updated = excluded.last_updated`,
		state.TraitName, state.Value, state.NumericValue, string(state.Trend),
		state.LastChangeReason, lastEventID, state.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("upsert trait state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AppendChangeRecords(ctx context.Context, recs []*StateChangeRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		id := rec.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO state_changes (id, event_id, trait_name, previous_value, new_value, change_amount, reason, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, rec.EventID, rec.TraitName, rec.PreviousValue, rec.NewValue,
			rec.ChangeAmount, rec.Reason, rec.Timestamp.UTC())
		if err != nil {
			return fmt.Errorf("append change record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ChangeRecordsForEvent(ctx context.Context, eventID string) ([]*StateChangeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, trait_name, previous_value, new_value, change_amount, reason, timestamp
		FROM state_changes WHERE event_id = ? ORDER BY timestamp ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query change records: %w", err)
	}
	return collectChangeRecords(rows)
}

func (r *SQLiteRepository) TraitHistory(ctx context.Context, name string, since time.Time) ([]*StateChangeRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if name == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, event_id, trait_name, previous_value, new_value, change_amount, reason, timestamp
			FROM state_changes WHERE timestamp >= ? ORDER BY timestamp DESC`, since.UTC())
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, event_id, trait_name, previous_value, new_value, change_amount, reason, timestamp
			FROM state_changes WHERE trait_name = ? AND timestamp >= ? ORDER BY timestamp DESC`,
			name, since.UTC())
	}
	if err != nil {
		return nil, fmt.Errorf("query trait history: %w", err)
	}
	return collectChangeRecords(rows)
}

func collectChangeRecords(rows *sql.Rows) ([]*StateChangeRecord, error) {
	defer rows.Close()
	var out []*StateChangeRecord
	for rows.Next() {
		var rec StateChangeRecord
		err := rows.Scan(&rec.ID, &rec.EventID, &rec.TraitName, &rec.PreviousValue,
			&rec.NewValue, &rec.ChangeAmount, &rec.Reason, &rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan change record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

var _ Repository = (*SQLiteRepository)(nil)
