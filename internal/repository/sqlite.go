package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pageants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			ranking_method TEXT NOT NULL DEFAULT 'score_average',
			tie_handling TEXT NOT NULL DEFAULT 'average',
			contestant_type TEXT NOT NULL DEFAULT 'solo',
			final_score_mode TEXT NOT NULL DEFAULT 'fresh',
			final_score_inheritance TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pageant_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			weight INTEGER NOT NULL DEFAULT 1,
			display_order INTEGER NOT NULL DEFAULT 0,
			top_n_proceed INTEGER,
			previous_type TEXT,
			FOREIGN KEY (pageant_id) REFERENCES pageants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS criteria (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			round_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			segment TEXT,
			weight REAL NOT NULL DEFAULT 1,
			min_score REAL NOT NULL DEFAULT 0,
			max_score REAL NOT NULL DEFAULT 100,
			allow_decimals BOOLEAN DEFAULT 1,
			decimal_places INTEGER DEFAULT 2,
			display_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (round_id) REFERENCES rounds(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS contestants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pageant_id INTEGER NOT NULL,
			number TEXT NOT NULL,
			name TEXT NOT NULL,
			gender TEXT NOT NULL DEFAULT 'female',
			is_pair BOOLEAN DEFAULT 0,
			member_one_id INTEGER,
			member_two_id INTEGER,
			active BOOLEAN DEFAULT 1,
			FOREIGN KEY (pageant_id) REFERENCES pageants(id) ON DELETE CASCADE,
			FOREIGN KEY (member_one_id) REFERENCES contestants(id) ON DELETE SET NULL,
			FOREIGN KEY (member_two_id) REFERENCES contestants(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS judges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT,
			access_code TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pageant_judges (
			pageant_id INTEGER NOT NULL,
			judge_id INTEGER NOT NULL,
			PRIMARY KEY (pageant_id, judge_id),
			FOREIGN KEY (pageant_id) REFERENCES pageants(id) ON DELETE CASCADE,
			FOREIGN KEY (judge_id) REFERENCES judges(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pageant_id INTEGER NOT NULL,
			round_id INTEGER NOT NULL,
			criteria_id INTEGER NOT NULL,
			contestant_id INTEGER NOT NULL,
			judge_id INTEGER NOT NULL,
			value REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (pageant_id) REFERENCES pageants(id) ON DELETE CASCADE,
			FOREIGN KEY (round_id) REFERENCES rounds(id) ON DELETE CASCADE,
			FOREIGN KEY (criteria_id) REFERENCES criteria(id) ON DELETE CASCADE,
			FOREIGN KEY (contestant_id) REFERENCES contestants(id) ON DELETE CASCADE,
			FOREIGN KEY (judge_id) REFERENCES judges(id) ON DELETE CASCADE,
			UNIQUE(round_id, criteria_id, contestant_id, judge_id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_pageant ON rounds(pageant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_type ON rounds(pageant_id, type)`,
		`CREATE INDEX IF NOT EXISTS idx_criteria_round ON criteria(round_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contestants_pageant ON contestants(pageant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_round_contestant ON scores(round_id, contestant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_pageant ON scores(pageant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_judges_code ON judges(access_code)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_pair_member_one ON contestants(member_one_id) WHERE member_one_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_pair_member_two ON contestants(member_two_id) WHERE member_two_id IS NOT NULL`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	defaultSettings := map[string]string{
		"scoring_open": "true",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value by key
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting upserts a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// allowed tables for ClearTable, guarding against SQL injection
var clearableTables = map[string]bool{
	"scores":         true,
	"contestants":    true,
	"criteria":       true,
	"rounds":         true,
	"pageant_judges": true,
	"judges":         true,
	"pageants":       true,
}

// ClearTable deletes all rows from a whitelisted table
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !clearableTables[table] {
		return fmt.Errorf("%w: %s", ErrInvalidTable, table)
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
