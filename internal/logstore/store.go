// Package logstore persists flattened encounter rows, one database per
// filter cache key. A batch commits in a single transaction, so a run
// killed mid-scrape keeps everything through its last complete batch.
package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"arkscrape/internal/encounter"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	encounter_id INTEGER NOT NULL,
	uploaded_at TEXT NOT NULL,
	boss TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	fight_timestamp INTEGER NOT NULL,
	duration INTEGER NOT NULL,
	version TEXT NOT NULL,
	local_player TEXT NOT NULL,
	region TEXT NOT NULL,
	total_damage_dealt INTEGER NOT NULL,
	total_dps REAL NOT NULL,
	min_gear_score REAL NOT NULL,
	max_gear_score REAL NOT NULL,
	name TEXT NOT NULL,
	class TEXT NOT NULL,
	spec TEXT NOT NULL,
	dps REAL NOT NULL,
	percent REAL NOT NULL,
	gear_score REAL NOT NULL,
	is_dead INTEGER NOT NULL,
	deaths INTEGER NOT NULL,
	ark_passive_active INTEGER NOT NULL,
	weird INTEGER NOT NULL,
	has_spec INTEGER NOT NULL,
	PRIMARY KEY (encounter_id, name)
);
CREATE INDEX IF NOT EXISTS idx_players_spec ON players (spec);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// timeFormat is fixed-width so lexicographic order matches chronological
// order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

// PathFor names the database file a cache key accumulates into.
func PathFor(dataDir, cacheKey string) string {
	return filepath.Join(dataDir, cacheKey+".db")
}

// Open opens (creating if necessary) the store at target. A plain path
// opens a local SQLite file; a libsql:// URL opens a remote database.
func Open(target string) (*Store, error) {
	var db *sql.DB
	var err error

	if strings.HasPrefix(target, "libsql://") {
		db, err = sql.Open("libsql", target)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", target, err)
		}
	} else {
		if dir := filepath.Dir(target); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		db, err = sql.Open("sqlite", target)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", target, err)
		}
		// single sequential writer; WAL keeps batch commits cheap
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Remove deletes a local store file. Missing files are fine.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KnownIDs returns the set of encounter ids already persisted.
func (s *Store) KnownIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT encounter_id FROM players")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := map[int64]struct{}{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = struct{}{}
	}
	return known, rows.Err()
}

// AppendRows persists one batch in a single transaction. Re-inserting a
// row for an already-stored (encounter, player) pair replaces it.
func (s *Store) AppendRows(ctx context.Context, batch []encounter.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO players (
			encounter_id, uploaded_at, boss, difficulty, fight_timestamp,
			duration, version, local_player, region, total_damage_dealt,
			total_dps, min_gear_score, max_gear_score, name, class, spec,
			dps, percent, gear_score, is_dead, deaths, ark_passive_active,
			weird, has_spec
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range batch {
		_, err := stmt.ExecContext(ctx,
			r.ID, r.UploadedAt.UTC().Format(timeFormat), r.Boss, r.Difficulty, r.Timestamp,
			r.Duration, r.Version, r.LocalPlayer, r.Region, r.TotalDamageDealt,
			r.TotalDps, r.MinGearScore, r.MaxGearScore, r.Name, r.Class, r.Spec,
			r.Dps, r.Percent, r.GearScore, r.IsDead, r.Deaths, r.ArkPassiveActive,
			r.Weird, r.HasSpec,
		)
		if err != nil {
			return fmt.Errorf("insert row for encounter %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Rows reads back the whole table in (encounter, player) order.
func (s *Store) Rows(ctx context.Context) ([]encounter.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT encounter_id, uploaded_at, boss, difficulty, fight_timestamp,
			duration, version, local_player, region, total_damage_dealt,
			total_dps, min_gear_score, max_gear_score, name, class, spec,
			dps, percent, gear_score, is_dead, deaths, ark_passive_active,
			weird, has_spec
		FROM players ORDER BY encounter_id, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []encounter.Row
	for rows.Next() {
		var r encounter.Row
		var uploadedAt string
		err := rows.Scan(
			&r.ID, &uploadedAt, &r.Boss, &r.Difficulty, &r.Timestamp,
			&r.Duration, &r.Version, &r.LocalPlayer, &r.Region, &r.TotalDamageDealt,
			&r.TotalDps, &r.MinGearScore, &r.MaxGearScore, &r.Name, &r.Class, &r.Spec,
			&r.Dps, &r.Percent, &r.GearScore, &r.IsDead, &r.Deaths, &r.ArkPassiveActive,
			&r.Weird, &r.HasSpec,
		)
		if err != nil {
			return nil, err
		}
		r.UploadedAt, err = time.Parse(timeFormat, uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("stored uploaded_at for encounter %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PageSize reports the page size this table was scraped with, 0 when
// the table is fresh.
func (s *Store) PageSize(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'page_size'").Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

func (s *Store) SetPageSize(ctx context.Context, n int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('page_size', ?)",
		strconv.Itoa(n),
	)
	return err
}
