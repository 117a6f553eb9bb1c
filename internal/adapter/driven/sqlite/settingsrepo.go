package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

const authTokenKey = "auth_token"

// Compile-time interface satisfaction check.
var _ driven.SettingsStore = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsStore port.
// The auth token is encrypted with AES-256-GCM before write and decrypted
// after read; linkage records (backend account ids) are stored as-is.
type SettingsRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewSettingsRepo creates a new SettingsRepo. key must be 32 bytes for
// AES-256-GCM, or nil to disable token storage (token operations will return
// ErrEncryptionKeyNotSet).
func NewSettingsRepo(db *DB, key []byte) *SettingsRepo {
	return &SettingsRepo{db: db, key: key}
}

// AuthToken retrieves the stored bearer token. Returns ("", nil) when no
// token has been stored.
func (r *SettingsRepo) AuthToken(ctx context.Context) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM settings WHERE key = ?`
	var encrypted string
	err := r.db.Reader.QueryRowContext(ctx, query, authTokenKey).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get auth token: %w", err)
	}

	plaintext, err := r.decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt auth token: %w", err)
	}
	return plaintext, nil
}

// SetAuthToken stores or replaces the bearer token.
func (r *SettingsRepo) SetAuthToken(ctx context.Context, token string) error {
	encrypted, err := r.encrypt(token)
	if err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, authTokenKey, encrypted); err != nil {
		return fmt.Errorf("set auth token: %w", err)
	}
	return nil
}

// Linkage retrieves the backend account id linked to the platform.
// Returns ("", nil) when the platform has never been linked.
func (r *SettingsRepo) Linkage(ctx context.Context, platform model.Platform) (string, error) {
	const query = `SELECT account_id FROM linkages WHERE platform = ?`
	var accountID string
	err := r.db.Reader.QueryRowContext(ctx, query, string(platform)).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get linkage for %s: %w", platform, err)
	}
	return accountID, nil
}

// PersistLinkage records the backend account id for the platform. The insert
// is conditional on no row existing yet, so the first linked identifier wins
// even if two racing syncs both try to persist.
func (r *SettingsRepo) PersistLinkage(ctx context.Context, platform model.Platform, accountID string) error {
	const query = `INSERT INTO linkages (platform, account_id) VALUES (?, ?) ON CONFLICT (platform) DO NOTHING`
	if _, err := r.db.Writer.ExecContext(ctx, query, string(platform), accountID); err != nil {
		return fmt.Errorf("persist linkage for %s: %w", platform, err)
	}
	return nil
}

// ClearAll removes the auth token and every linkage record in one transaction.
func (r *SettingsRepo) ClearAll(ctx context.Context) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, authTokenKey); err != nil {
		return fmt.Errorf("clear auth token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM linkages`); err != nil {
		return fmt.Errorf("clear linkages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *SettingsRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *SettingsRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}
