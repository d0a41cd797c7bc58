package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const (
	maxRetries  = 10
	retryDelay  = 5 * time.Second
	pingTimeout = 5 * time.Second
)

// Connect opens PostgreSQL with a retry loop.
func Connect(ctx context.Context, url string, log zerolog.Logger) (*sql.DB, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres URL: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	finalURL := stdlib.RegisterConnConfig(config.ConnConfig)

	var db *sql.DB
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		db, err = sql.Open("pgx", finalURL)
		if err == nil {
			db.SetConnMaxLifetime(time.Minute * 3)
			db.SetMaxIdleConns(5)
			db.SetMaxOpenConns(10)

			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			pingErr := db.PingContext(pingCtx)
			cancel()

			if pingErr == nil {
				log.Info().Msg("Connected to PostgreSQL (simple protocol mode)")
				return db, nil
			}
			err = pingErr
			db.Close()
		}

		if ctx.Err() == nil {
			log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("PostgreSQL connection failed, retrying in 5s...")
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("could not connect to postgres after %d attempts: %w", maxRetries, err)
}

// GetPromptText returns the operator-customized spoken text for a prompt
// id and language. sql.ErrNoRows propagates so the caller can fall back to
// the embedded texts.
func GetPromptText(db *sql.DB, promptID, languageCode string) (string, error) {
	var content string
	query := `
		SELECT content FROM prompts
		WHERE id = $1 AND language_code = $2
		LIMIT 1`
	err := db.QueryRow(query, promptID, languageCode).Scan(&content)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("prompt not found: id=%s, lang=%s: %w", promptID, languageCode, err)
		}
		return "", fmt.Errorf("prompt query failed: %w", err)
	}
	return content, nil
}
