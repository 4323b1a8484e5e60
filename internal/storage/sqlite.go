// Package storage provides SQLite-based persistence for episode history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/melee-gym/internal/gym"
)

// timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the SQLite database connection for episode persistence.
type Store struct {
	db *sql.DB
}

// Episode is one recorded match.
type Episode struct {
	ID          int64
	EpisodeID   string
	Environment string
	Stage       string
	Players     string
	MenuFrames  int
	MatchFrames int
	Outcome     string // "completed", "aborted", "failed"
	StartedAt   time.Time
	EndedAt     time.Time
}

// Duration returns the wall-clock length of the episode.
func (e Episode) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			episode_id TEXT NOT NULL UNIQUE,
			environment TEXT NOT NULL,
			stage TEXT NOT NULL,
			players TEXT NOT NULL,
			menu_frames INTEGER NOT NULL DEFAULT 0,
			match_frames INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_environment ON episodes(environment);
		CREATE INDEX IF NOT EXISTS idx_episodes_started ON episodes(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records a finished episode.
// Returns the ID of the inserted record.
func (s *Store) SaveEpisode(ep Episode) (int64, error) {
	if ep.EpisodeID == "" {
		return 0, errors.New("storage: episode id is required")
	}

	result, err := s.db.Exec(
		`INSERT INTO episodes
		 (episode_id, environment, stage, players, menu_frames, match_frames, outcome, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.EpisodeID,
		ep.Environment,
		ep.Stage,
		ep.Players,
		ep.MenuFrames,
		ep.MatchFrames,
		ep.Outcome,
		formatTime(ep.StartedAt),
		formatTime(ep.EndedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const episodeColumns = `id, episode_id, environment, stage, players,
	menu_frames, match_frames, outcome, started_at, ended_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (Episode, error) {
	var ep Episode
	var startedAt, endedAt any
	err := row.Scan(
		&ep.ID,
		&ep.EpisodeID,
		&ep.Environment,
		&ep.Stage,
		&ep.Players,
		&ep.MenuFrames,
		&ep.MatchFrames,
		&ep.Outcome,
		&startedAt,
		&endedAt,
	)
	if err != nil {
		return Episode{}, err
	}
	ep.StartedAt = parseTime(startedAt)
	ep.EndedAt = parseTime(endedAt)
	return ep, nil
}

// EpisodeByID retrieves an episode by its episode ID.
// Returns nil if no such episode exists.
func (s *Store) EpisodeByID(episodeID string) (*Episode, error) {
	row := s.db.QueryRow(
		`SELECT `+episodeColumns+` FROM episodes WHERE episode_id = ?`,
		episodeID,
	)
	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episode: %w", err)
	}
	return &ep, nil
}

// RecentEpisodes retrieves the most recent episodes, newest first.
// An empty environment matches every environment.
func (s *Store) RecentEpisodes(environment string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE ? = '' OR environment = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		environment, environment, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// ClearEpisodes deletes all episodes of the given environment.
// An empty environment deletes everything.
func (s *Store) ClearEpisodes(environment string) error {
	_, err := s.db.Exec("DELETE FROM episodes WHERE ? = '' OR environment = ?", environment, environment)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// RecordEpisode implements gym.EpisodeRecorder.
// This adapter allows the environment to persist episodes without direct storage dependency.
func (s *Store) RecordEpisode(rec gym.EpisodeRecord) error {
	_, err := s.SaveEpisode(Episode{
		EpisodeID:   rec.ID,
		Environment: rec.Environment,
		Stage:       rec.Stage.String(),
		Players:     rec.Players,
		MenuFrames:  rec.MenuFrames,
		MatchFrames: rec.MatchFrames,
		Outcome:     string(rec.Outcome),
		StartedAt:   rec.StartedAt,
		EndedAt:     rec.EndedAt,
	})
	return err
}

// Ensure Store implements EpisodeRecorder
var _ gym.EpisodeRecorder = (*Store)(nil)

// EpisodeStats contains aggregated statistics for an environment.
type EpisodeStats struct {
	Environment    string
	Episodes       int
	Completed      int
	Aborted        int
	Failed         int
	TotalFrames    int64
	AvgMatchFrames float64
	LastPlayed     time.Time
}

// GetEpisodeStats retrieves aggregated statistics for one environment.
func (s *Store) GetEpisodeStats(environment string) (*EpisodeStats, error) {
	stats := &EpisodeStats{Environment: environment}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(outcome = 'completed'), 0),
		        COALESCE(SUM(outcome = 'aborted'), 0),
		        COALESCE(SUM(outcome = 'failed'), 0),
		        COALESCE(SUM(match_frames), 0),
		        COALESCE(AVG(match_frames), 0),
		        MAX(started_at)
		 FROM episodes WHERE environment = ?`,
		environment,
	).Scan(
		&stats.Episodes,
		&stats.Completed,
		&stats.Aborted,
		&stats.Failed,
		&stats.TotalFrames,
		&stats.AvgMatchFrames,
		&lastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get episode stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllEpisodeStats retrieves statistics for every environment that has
// recorded episodes.
func (s *Store) GetAllEpisodeStats() (map[string]*EpisodeStats, error) {
	rows, err := s.db.Query(
		`SELECT environment, COUNT(*),
		        SUM(outcome = 'completed'), SUM(outcome = 'aborted'), SUM(outcome = 'failed'),
		        SUM(match_frames), AVG(match_frames), MAX(started_at)
		 FROM episodes
		 GROUP BY environment`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all episode stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*EpisodeStats)
	for rows.Next() {
		var st EpisodeStats
		var lastPlayed any
		if err := rows.Scan(
			&st.Environment,
			&st.Episodes,
			&st.Completed,
			&st.Aborted,
			&st.Failed,
			&st.TotalFrames,
			&st.AvgMatchFrames,
			&lastPlayed,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Environment] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string, depending on what the
// driver hands back.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}
}
