package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/logger"
)

// PostgresStore persists snapshots in a weekly_snapshots table, one row per
// period key. Preferred over the file store for multi-instance deployments.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres snapshot store connected")
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS weekly_snapshots (
		week_id VARCHAR(16) PRIMARY KEY,
		week_label TEXT NOT NULL,
		articles JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_weekly_snapshots_created_at ON weekly_snapshots(created_at);
	`
	_, err := ps.db.Exec(schema)
	return err
}

func (ps *PostgresStore) Get(key string) (*feed.Snapshot, bool, error) {
	var (
		snap     feed.Snapshot
		articles []byte
	)
	err := ps.db.QueryRow(
		`SELECT week_id, week_label, articles, created_at FROM weekly_snapshots WHERE week_id = $1`,
		key,
	).Scan(&snap.WeekID, &snap.WeekLabel, &articles, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot: %w", err)
	}
	if err := json.Unmarshal(articles, &snap.Articles); err != nil {
		return nil, false, fmt.Errorf("unmarshal articles: %w", err)
	}
	return &snap, true, nil
}

func (ps *PostgresStore) Put(key string, snap *feed.Snapshot) error {
	articles, err := json.Marshal(snap.Articles)
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}
	_, err = ps.db.Exec(`
		INSERT INTO weekly_snapshots (week_id, week_label, articles, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (week_id) DO UPDATE SET
			week_label = EXCLUDED.week_label,
			articles = EXCLUDED.articles,
			created_at = EXCLUDED.created_at`,
		key, snap.WeekLabel, articles, snap.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Latest() (*feed.Snapshot, bool, error) {
	var (
		snap     feed.Snapshot
		articles []byte
	)
	err := ps.db.QueryRow(
		`SELECT week_id, week_label, articles, created_at FROM weekly_snapshots ORDER BY created_at DESC LIMIT 1`,
	).Scan(&snap.WeekID, &snap.WeekLabel, &articles, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal(articles, &snap.Articles); err != nil {
		return nil, false, fmt.Errorf("unmarshal articles: %w", err)
	}
	return &snap, true, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
