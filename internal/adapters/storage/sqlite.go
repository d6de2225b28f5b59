package storage

// sqlite.go: embedded persistence for the whole simulation.
//
// Three tables back everything:
//   - `kv`: one JSON row per singleton key (simulation state, team codes).
//   - `teams`: one JSON row per team, replaced wholesale on save. Team
//     documents are small (tens of KB) and written a handful of times per
//     period, so a document store beats a normalized schema here.
//   - `submissions`: append-only audit trail of decision submissions.
//
// Writes are fire-and-forget from the engine's perspective: success means
// the row landed in SQLite, and any attached ChangeNotifier is poked
// afterwards without the caller waiting on it.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aantao/marksim/internal/domain"
	"github.com/aantao/marksim/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT     NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
    code       TEXT PRIMARY KEY,
    name       TEXT,
    data       TEXT     NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
    id           TEXT PRIMARY KEY,
    team_code    TEXT     NOT NULL,
    period       INTEGER  NOT NULL,
    auto         INTEGER  NOT NULL DEFAULT 0,
    submitted_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_period ON submissions(period);
`

const (
	keySimulationState = "simulation_state"
	keyTeamCodes       = "team_codes"
)

// SQLiteRepository implements ports.Repository over SQLite (pure Go, no CGo).
type SQLiteRepository struct {
	db       *sql.DB
	notifier ports.ChangeNotifier // optional, nil is fine
}

// NewSQLite opens (or creates) the database at the given path and applies
// the schema. Use ":memory:" in tests.
func NewSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLite: apply schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// SetNotifier attaches a presentation-side refresh channel. The engine
// never sees this; only views react to it.
func (s *SQLiteRepository) SetNotifier(n ports.ChangeNotifier) {
	s.notifier = n
}

func (s *SQLiteRepository) notify(key string) {
	if s.notifier != nil {
		s.notifier.DataChanged(key)
	}
}

// getKV unmarshals a singleton key into dst; reports whether it existed.
func (s *SQLiteRepository) getKV(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: read %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteRepository) putKV(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	s.notify(key)
	return nil
}

// GetSimulationState returns the cohort state, or nil before initialization.
func (s *SQLiteRepository) GetSimulationState(ctx context.Context) (*domain.SimulationState, error) {
	var state domain.SimulationState
	ok, err := s.getKV(ctx, keySimulationState, &state)
	if err != nil || !ok {
		return nil, err
	}
	return &state, nil
}

// SaveSimulationState persists the cohort state.
func (s *SQLiteRepository) SaveSimulationState(ctx context.Context, state domain.SimulationState) error {
	return s.putKV(ctx, keySimulationState, state)
}

// GetTeamCodes returns the roster, empty before initialization.
func (s *SQLiteRepository) GetTeamCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if _, err := s.getKV(ctx, keyTeamCodes, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// SaveTeamCodes persists the roster.
func (s *SQLiteRepository) SaveTeamCodes(ctx context.Context, codes []string) error {
	return s.putKV(ctx, keyTeamCodes, codes)
}

// GetTeam returns one team, or nil when absent.
func (s *SQLiteRepository) GetTeam(ctx context.Context, code string) (*domain.Team, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM teams WHERE code = ?`, code).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetTeam: %q: %w", code, err)
	}
	var team domain.Team
	if err := json.Unmarshal([]byte(raw), &team); err != nil {
		return nil, fmt.Errorf("storage.GetTeam: decode %q: %w", code, err)
	}
	return &team, nil
}

// SaveTeam upserts one team document.
func (s *SQLiteRepository) SaveTeam(ctx context.Context, team domain.Team) error {
	raw, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("storage.SaveTeam: encode %q: %w", team.Code, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO teams (code, name, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
		team.Code, team.Name, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage.SaveTeam: %q: %w", team.Code, err)
	}
	s.notify("team:" + team.Code)
	return nil
}

// GetAllTeams returns every team keyed by code.
func (s *SQLiteRepository) GetAllTeams(ctx context.Context) (map[string]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, data FROM teams`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAllTeams: %w", err)
	}
	defer rows.Close()

	teams := make(map[string]domain.Team)
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("storage.GetAllTeams: scan: %w", err)
		}
		var team domain.Team
		if err := json.Unmarshal([]byte(raw), &team); err != nil {
			return nil, fmt.Errorf("storage.GetAllTeams: decode %q: %w", code, err)
		}
		teams[code] = team
	}
	return teams, rows.Err()
}

// SaveAllTeams replaces every team document in one transaction, so a
// simulation step commits the whole cohort or nothing.
func (s *SQLiteRepository) SaveAllTeams(ctx context.Context, teams map[string]domain.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveAllTeams: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for code, team := range teams {
		raw, err := json.Marshal(team)
		if err != nil {
			return fmt.Errorf("storage.SaveAllTeams: encode %q: %w", code, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO teams (code, name, data, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(code) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
			code, team.Name, string(raw), now); err != nil {
			return fmt.Errorf("storage.SaveAllTeams: write %q: %w", code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveAllTeams: commit: %w", err)
	}
	s.notify("teams")
	return nil
}

// RecordSubmission appends one audit row.
func (s *SQLiteRepository) RecordSubmission(ctx context.Context, entry ports.SubmissionEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, team_code, period, auto, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		entry.SubmissionID, entry.TeamCode, entry.Period, boolToInt(entry.AutoSubmitted), entry.SubmittedAt.UTC())
	if err != nil {
		return fmt.Errorf("storage.RecordSubmission: %w", err)
	}
	return nil
}

// GetSubmissions returns the audit trail for one period, oldest first.
func (s *SQLiteRepository) GetSubmissions(ctx context.Context, period int) ([]ports.SubmissionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_code, period, auto, submitted_at
		FROM submissions WHERE period = ? ORDER BY submitted_at ASC`, period)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSubmissions: %w", err)
	}
	defer rows.Close()

	var entries []ports.SubmissionEntry
	for rows.Next() {
		var e ports.SubmissionEntry
		var auto int
		if err := rows.Scan(&e.SubmissionID, &e.TeamCode, &e.Period, &auto, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("storage.GetSubmissions: scan: %w", err)
		}
		e.AutoSubmitted = auto != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset wipes every table.
func (s *SQLiteRepository) Reset(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM kv`,
		`DELETE FROM teams`,
		`DELETE FROM submissions`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage.Reset: %w", err)
		}
	}
	s.notify("reset")
	return nil
}

// Close closes the database cleanly.
func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
