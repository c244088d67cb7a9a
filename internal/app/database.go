package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	maxTracedQueryLength = 512
	dbPingTimeout        = 5 * time.Second
)

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

// OpenDatabase opens a traced postgres handle and checks it is reachable.
func OpenDatabase(ctx context.Context, rawURL string, disablePreparedBinaryResult bool) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(rawURL, disablePreparedBinaryResult)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NormalizeDBURL asks lib/pq to skip binary results for prepared statements,
// which poolers in transaction mode cannot route. Explicit settings win.
func NormalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	raw = strings.TrimSpace(raw)
	if !disablePreparedBinaryResult || raw == "" {
		return raw
	}

	if !strings.Contains(raw, "://") {
		if strings.Contains(raw, "disable_prepared_binary_result=") {
			return raw
		}
		return raw + " disable_prepared_binary_result=yes"
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		name, ok := strings.CutPrefix(token, "dbname=")
		if !ok {
			continue
		}
		if name = strings.Trim(strings.TrimSpace(name), `"'`); name != "" {
			return name
		}
	}

	return ""
}

// formatDBQueryForTrace collapses whitespace so multi-line upserts read as
// one line in span attributes.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSuffix(strings.TrimSpace(query), ";")
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
