// internal/adapter/storage/trend_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendwatch/internal/domain/trend"
)

// TrendStore implements trend.Store on PostgreSQL
type TrendStore struct {
	db *pgxpool.Pool
}

// NewTrendStore creates a new trend store
func NewTrendStore(db *pgxpool.Pool) *TrendStore {
	return &TrendStore{
		db: db,
	}
}

// EnsureSchema creates the trend_records table if it does not exist
func (s *TrendStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS trend_records (
			name TEXT PRIMARY KEY,
			rank INTEGER NOT NULL,
			sentiment_score DOUBLE PRECISION NOT NULL,
			sentiment_description TEXT NOT NULL,
			tweets_analyzed BIGINT NOT NULL,
			keywords JSONB NOT NULL,
			tweets JSONB NOT NULL,
			articles JSONB NOT NULL,
			first_seen TIMESTAMPTZ NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating trend_records table: %w", err)
	}

	return nil
}

// Upsert inserts the record or replaces the one with the same name. The
// stored first_seen survives updates; last_updated is stamped on every call.
func (s *TrendStore) Upsert(ctx context.Context, r trend.Record) error {
	query := `
		INSERT INTO trend_records (
			name, rank, sentiment_score, sentiment_description,
			tweets_analyzed, keywords, tweets, articles,
			first_seen, last_updated
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10
		)
		ON CONFLICT (name) DO UPDATE
		SET
			rank = $2,
			sentiment_score = $3,
			sentiment_description = $4,
			tweets_analyzed = $5,
			keywords = $6,
			tweets = $7,
			articles = $8,
			last_updated = $10
	`

	now := time.Now()
	if r.FirstSeen.IsZero() {
		r.FirstSeen = now
	}
	r.LastUpdated = now

	keywordsJSON, err := json.Marshal(r.Keywords)
	if err != nil {
		return fmt.Errorf("error marshaling keywords: %w", err)
	}

	tweetsJSON, err := json.Marshal(r.Tweets)
	if err != nil {
		return fmt.Errorf("error marshaling tweets: %w", err)
	}

	articlesJSON, err := json.Marshal(r.Articles)
	if err != nil {
		return fmt.Errorf("error marshaling articles: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		r.Name,
		r.Rank,
		r.SentimentScore,
		r.SentimentDescription,
		r.TweetsAnalyzed,
		keywordsJSON,
		tweetsJSON,
		articlesJSON,
		r.FirstSeen,
		r.LastUpdated,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// FindByName retrieves the record for a trend name
func (s *TrendStore) FindByName(ctx context.Context, name string) (*trend.Record, error) {
	query := `
		SELECT
			name, rank, sentiment_score, sentiment_description,
			tweets_analyzed, keywords, tweets, articles,
			first_seen, last_updated
		FROM trend_records
		WHERE name = $1
	`

	var r trend.Record
	var keywordsJSON, tweetsJSON, articlesJSON []byte

	err := s.db.QueryRow(ctx, query, name).Scan(
		&r.Name,
		&r.Rank,
		&r.SentimentScore,
		&r.SentimentDescription,
		&r.TweetsAnalyzed,
		&keywordsJSON,
		&tweetsJSON,
		&articlesJSON,
		&r.FirstSeen,
		&r.LastUpdated,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trend %q: %w", name, trend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying trend record: %w", err)
	}

	if err := unmarshalRecordFields(&r, keywordsJSON, tweetsJSON, articlesJSON); err != nil {
		return nil, err
	}

	return &r, nil
}

// List returns all records ordered by rank
func (s *TrendStore) List(ctx context.Context) ([]trend.Record, error) {
	query := `
		SELECT
			name, rank, sentiment_score, sentiment_description,
			tweets_analyzed, keywords, tweets, articles,
			first_seen, last_updated
		FROM trend_records
		ORDER BY rank ASC, name ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var records []trend.Record
	for rows.Next() {
		var r trend.Record
		var keywordsJSON, tweetsJSON, articlesJSON []byte

		err := rows.Scan(
			&r.Name,
			&r.Rank,
			&r.SentimentScore,
			&r.SentimentDescription,
			&r.TweetsAnalyzed,
			&keywordsJSON,
			&tweetsJSON,
			&articlesJSON,
			&r.FirstSeen,
			&r.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning trend record: %w", err)
		}

		if err := unmarshalRecordFields(&r, keywordsJSON, tweetsJSON, articlesJSON); err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trend records: %w", err)
	}

	return records, nil
}

// DeleteAbsent removes every record whose name is not in names. An empty
// names list removes every record.
func (s *TrendStore) DeleteAbsent(ctx context.Context, names []string) (int64, error) {
	query := `
		DELETE FROM trend_records
		WHERE name <> ALL($1)
	`

	if names == nil {
		names = []string{}
	}

	tag, err := s.db.Exec(ctx, query, names)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return tag.RowsAffected(), nil
}

func unmarshalRecordFields(r *trend.Record, keywordsJSON, tweetsJSON, articlesJSON []byte) error {
	if err := json.Unmarshal(keywordsJSON, &r.Keywords); err != nil {
		return fmt.Errorf("error unmarshaling keywords: %w", err)
	}

	if err := json.Unmarshal(tweetsJSON, &r.Tweets); err != nil {
		return fmt.Errorf("error unmarshaling tweets: %w", err)
	}

	if err := json.Unmarshal(articlesJSON, &r.Articles); err != nil {
		return fmt.Errorf("error unmarshaling articles: %w", err)
	}

	return nil
}
