package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

var ErrUserNotFound = errors.New("user not found")

// Repository is the durable store for accounts and search history.
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash, displayName string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SaveSearch(ctx context.Context, job SaveJob) (int64, error)
	FetchHistory(ctx context.Context, userID int64, limit int) ([]PastSearch, error)
}

// DBOps is the subset of pgxpool.Pool methods the repository uses, so tests
// can inject pgxmock.
type DBOps interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DBOps
}

func NewPostgresRepository(db DBOps) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AutoMigrate creates the schema when it does not exist yet.
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id            BIGSERIAL PRIMARY KEY,
          email         TEXT UNIQUE NOT NULL,
          password_hash TEXT NOT NULL,
          display_name  TEXT,
          created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS user_requests (
          id                  BIGSERIAL PRIMARY KEY,
          user_id             BIGINT REFERENCES users(id) ON DELETE CASCADE,
          text_description    TEXT NOT NULL DEFAULT '',
          emojis              JSONB,
          num_songs_requested INT NOT NULL,
          analysis            JSONB,
          created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS recommended_songs (
          id                 BIGSERIAL PRIMARY KEY,
          request_id         BIGINT NOT NULL REFERENCES user_requests(id) ON DELETE CASCADE,
          position           INT NOT NULL,
          spotify_track_id   TEXT,
          title              TEXT NOT NULL,
          artist             TEXT NOT NULL,
          album              TEXT,
          album_art          TEXT,
          preview_url        TEXT,
          spotify_url        TEXT,
          release_year       TEXT,
          duration_ms        INT,
          duration_formatted TEXT,
          why_chosen         TEXT,
          matched_criteria   JSONB
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_user_requests_user_created
      ON user_requests(user_id, created_at DESC)
    `); err != nil {
		return err
	}

	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, email, passwordHash, displayName string) (User, error) {
	var u User
	var displayNamePtr *string
	if displayName != "" {
		displayNamePtr = &displayName
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, COALESCE(display_name, ''), created_at
	`, email, passwordHash, displayNamePtr).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, COALESCE(display_name, ''), created_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// SaveSearch inserts the request row and its songs. Returns the new request
// id.
func (r *PostgresRepository) SaveSearch(ctx context.Context, job SaveJob) (int64, error) {
	emojisPayload, err := jsonOrNil(job.Query.Emojis)
	if err != nil {
		return 0, fmt.Errorf("marshal emojis: %w", err)
	}
	analysisPayload, err := json.Marshal(job.Analysis)
	if err != nil {
		return 0, fmt.Errorf("marshal analysis: %w", err)
	}

	var requestID int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO user_requests (user_id, text_description, emojis, num_songs_requested, analysis)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, job.Query.UserID, job.Query.Text, emojisPayload, job.Query.Limit, analysisPayload).Scan(&requestID)
	if err != nil {
		return 0, fmt.Errorf("insert user request: %w", err)
	}

	for i, track := range job.Tracks {
		criteriaPayload, err := jsonOrNil(track.MatchedCriteria)
		if err != nil {
			return 0, fmt.Errorf("marshal matched criteria: %w", err)
		}
		_, err = r.db.Exec(ctx, `
			INSERT INTO recommended_songs (
				request_id, position, spotify_track_id, title, artist, album,
				album_art, preview_url, spotify_url, release_year,
				duration_ms, duration_formatted, why_chosen, matched_criteria
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, requestID, i+1, nullIfEmpty(track.ID), track.Title, track.Artist, nullIfEmpty(track.Album),
			nullIfEmpty(track.AlbumArt), nullIfEmpty(track.PreviewURL), nullIfEmpty(track.SpotifyURL), nullIfEmpty(track.ReleaseYear),
			track.DurationMs, nullIfEmpty(track.DurationFormatted), nullIfEmpty(track.Why), criteriaPayload)
		if err != nil {
			return 0, fmt.Errorf("insert recommended song: %w", err)
		}
	}

	return requestID, nil
}

func (r *PostgresRepository) FetchHistory(ctx context.Context, userID int64, limit int) ([]PastSearch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, text_description, emojis, num_songs_requested, analysis, created_at
		FROM user_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var (
		searches []PastSearch
		byID     = map[int64]*PastSearch{}
		ids      []int64
	)
	for rows.Next() {
		var (
			s           PastSearch
			emojisRaw   []byte
			analysisRaw []byte
		)
		if err := rows.Scan(&s.RequestID, &s.TextDescription, &emojisRaw, &s.NumSongs, &analysisRaw, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if len(emojisRaw) > 0 {
			_ = json.Unmarshal(emojisRaw, &s.Emojis)
		}
		if len(analysisRaw) > 0 {
			_ = json.Unmarshal(analysisRaw, &s.Analysis)
		}
		s.Songs = []recommend.EnrichedTrack{}
		searches = append(searches, s)
		ids = append(ids, s.RequestID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	for i := range searches {
		byID[searches[i].RequestID] = &searches[i]
	}
	if len(ids) == 0 {
		return searches, nil
	}

	songRows, err := r.db.Query(ctx, `
		SELECT request_id, COALESCE(spotify_track_id, ''), title, artist,
		       COALESCE(album, ''), COALESCE(album_art, ''), COALESCE(preview_url, ''),
		       COALESCE(spotify_url, ''), COALESCE(release_year, ''),
		       COALESCE(duration_ms, 0), COALESCE(duration_formatted, ''),
		       COALESCE(why_chosen, ''), matched_criteria
		FROM recommended_songs
		WHERE request_id = ANY($1)
		ORDER BY request_id DESC, position ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query history songs: %w", err)
	}
	defer songRows.Close()

	for songRows.Next() {
		var (
			requestID   int64
			track       recommend.EnrichedTrack
			criteriaRaw []byte
		)
		if err := songRows.Scan(&requestID, &track.ID, &track.Title, &track.Artist,
			&track.Album, &track.AlbumArt, &track.PreviewURL,
			&track.SpotifyURL, &track.ReleaseYear,
			&track.DurationMs, &track.DurationFormatted,
			&track.Why, &criteriaRaw); err != nil {
			return nil, fmt.Errorf("scan history song: %w", err)
		}
		if len(criteriaRaw) > 0 {
			_ = json.Unmarshal(criteriaRaw, &track.MatchedCriteria)
		}
		if s, ok := byID[requestID]; ok {
			s.Songs = append(s.Songs, track)
		}
	}
	if err := songRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history songs: %w", err)
	}

	return searches, nil
}

func jsonOrNil(v []string) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
