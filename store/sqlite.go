// Package store caches encoded corpus songs in SQLite so repeated runs skip
// parsing files that have not changed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
)

// SQLiteStore implements corpus.Cache using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

var _ corpus.Cache = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS encodings (
		id          TEXT PRIMARY KEY,
		path        TEXT NOT NULL,
		width       INTEGER NOT NULL,
		lower_bound INTEGER NOT NULL,
		upper_bound INTEGER NOT NULL,
		size        INTEGER NOT NULL,
		mod_time    INTEGER NOT NULL,
		timesteps   INTEGER NOT NULL,
		vectors     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_encodings_key
		ON encodings(path, width, lower_bound, upper_bound);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Lookup returns the cached song for path when it was encoded with the same
// width and pitch range from a file with the same size and modification time.
func (s *SQLiteStore) Lookup(ctx context.Context, path string, w flat.Width, stamp corpus.Stamp) (corpus.Song, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT vectors FROM encodings
		 WHERE path = ? AND width = ? AND lower_bound = ? AND upper_bound = ?
		   AND size = ? AND mod_time = ?`,
		path, int(w), stamp.LowerBound, stamp.UpperBound, stamp.Size, stamp.ModTime,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return corpus.Song{}, false, nil
	}
	if err != nil {
		return corpus.Song{}, false, fmt.Errorf("lookup %s: %w", path, err)
	}

	song := corpus.Song{Path: path}
	if err := json.Unmarshal([]byte(data), &song.Vectors); err != nil {
		return corpus.Song{}, false, fmt.Errorf("decode %s: %w", path, err)
	}
	return song, true, nil
}

// Save stores song, replacing any older entry for the same path, width and
// pitch range.
func (s *SQLiteStore) Save(ctx context.Context, song corpus.Song, w flat.Width, stamp corpus.Stamp) error {
	data, err := json.Marshal(song.Vectors)
	if err != nil {
		return fmt.Errorf("encode %s: %w", song.Path, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO encodings (id, path, width, lower_bound, upper_bound, size, mod_time, timesteps, vectors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, width, lower_bound, upper_bound) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			timesteps = excluded.timesteps,
			vectors = excluded.vectors,
			created_at = excluded.created_at`,
		s.newID(), song.Path, int(w), stamp.LowerBound, stamp.UpperBound, stamp.Size, stamp.ModTime, song.Len(), string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", song.Path, err)
	}
	return nil
}

// Stats summarizes the cached songs of one encoding.
type Stats struct {
	Songs     int
	Timesteps int
}

func (s *SQLiteStore) Stats(ctx context.Context, w flat.Width, lowerBound, upperBound int) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(timesteps), 0) FROM encodings
		 WHERE width = ? AND lower_bound = ? AND upper_bound = ?`,
		int(w), lowerBound, upperBound,
	).Scan(&st.Songs, &st.Timesteps)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
