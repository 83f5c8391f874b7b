// Package save persists game snapshots in a SQLite database. Snapshots
// are the JSON form of the game state, zstd-compressed; rules and options
// are not part of a snapshot and are re-attached on load.
package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/game"
	"github.com/napolitain/civkit/internal/ruleset"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	game_id    TEXT NOT NULL,
	turn       INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	data       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_game_turn ON snapshots (game_id, turn);
`

// SnapshotInfo describes one stored snapshot without its payload
type SnapshotInfo struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	Turn      int       `json:"turn"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is a snapshot database open over one SQLite file
type Store struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens or creates the snapshot database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open save database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize save database: %w", err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close releases the database and the compressors
func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}

// SaveSnapshot stores the game's current state and returns the snapshot ID
func (s *Store) SaveSnapshot(ctx context.Context, g *game.GameInfo) (string, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("failed to serialize game %s: %w", g.ID, err)
	}
	compressed := s.encoder.EncodeAll(payload, nil)

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, game_id, turn, created_at, data) VALUES (?, ?, ?, ?, ?)`,
		id, g.ID, g.Turn, time.Now().UTC().Format(time.RFC3339), compressed)
	if err != nil {
		return "", fmt.Errorf("failed to store snapshot for game %s: %w", g.ID, err)
	}
	return id, nil
}

// LoadSnapshot restores a snapshot by ID, re-attaching rules and options
func (s *Store) LoadSnapshot(ctx context.Context, id string, rules *ruleset.Ruleset, options *config.Options) (*game.GameInfo, error) {
	var compressed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE id = ?`, id).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", id, err)
	}

	payload, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", id, err)
	}
	g := &game.GameInfo{}
	if err := json.Unmarshal(payload, g); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", id, err)
	}
	g.Rehydrate(rules, options)
	return g, nil
}

// LatestSnapshot returns the newest snapshot ID of a game, by turn then
// insertion time
func (s *Store) LatestSnapshot(ctx context.Context, gameID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE game_id = ? ORDER BY turn DESC, created_at DESC LIMIT 1`,
		gameID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("game %s has no snapshots", gameID)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListSnapshots returns a game's snapshots in ascending turn order
func (s *Store) ListSnapshots(ctx context.Context, gameID string) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, turn, created_at FROM snapshots WHERE game_id = ? ORDER BY turn ASC, created_at ASC`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.GameID, &info.Turn, &createdAt); err != nil {
			return nil, err
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots of a game
func (s *Store) Prune(ctx context.Context, gameID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE game_id = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE game_id = ? ORDER BY turn DESC, created_at DESC LIMIT ?
		)`, gameID, gameID, keep)
	return err
}
