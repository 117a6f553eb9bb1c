// Package browser reads session cookies from a local browser profile and
// watches the profile's cookie database for changes.
package browser

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CookieSource = (*CookieStore)(nil)

// CookieStore implements the CookieSource port against a Firefox-format
// cookie database (moz_cookies table, plaintext values). The database is
// opened read-only per Read so a browser rotating or rebuilding the file
// between syncs is picked up automatically.
type CookieStore struct {
	dbPath    string
	userAgent string
}

// NewCookieStore creates a CookieStore over the given cookies.sqlite path.
// userAgent is stamped onto every captured bundle.
func NewCookieStore(dbPath, userAgent string) *CookieStore {
	return &CookieStore{dbPath: dbPath, userAgent: userAgent}
}

// Read captures the platform's declared cookies into a CredentialBundle.
// Cookies missing from the store are absent from the bundle. An unavailable
// or unreadable store yields an all-absent bundle: from the sync engine's
// point of view that is indistinguishable from "not logged in".
func (s *CookieStore) Read(ctx context.Context, platform model.Platform) (model.CredentialBundle, error) {
	bundle := model.CredentialBundle{
		Cookies:   make(map[string]string),
		UserAgent: s.userAgent,
	}

	db, err := s.open()
	if err != nil {
		return bundle, nil
	}
	defer db.Close()

	keys := platform.CookieKeys()
	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT name, value, host FROM moz_cookies WHERE name IN (%s)`, placeholders)
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return bundle, nil
	}
	defer rows.Close()

	for rows.Next() {
		var name, value, host string
		if err := rows.Scan(&name, &value, &host); err != nil {
			continue
		}
		if !platform.MatchesDomain(host) {
			continue
		}
		// First match wins when the same cookie name exists on multiple
		// subdomains; moz_cookies orders insertion first, which is the
		// session the browser itself uses.
		if _, ok := bundle.Cookies[name]; !ok {
			bundle.Cookies[name] = value
		}
	}

	return bundle, nil
}

// open opens the cookie database read-only without taking a lock, so a
// running browser holding the file is never blocked or corrupted.
func (s *CookieStore) open() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(1000)", s.dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
