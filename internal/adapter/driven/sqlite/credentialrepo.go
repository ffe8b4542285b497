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
	"time"

	"github.com/slackdeck/slackdeck/internal/domain/model"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// When a 32-byte key is configured, token values are encrypted with
// AES-256-GCM before write and decrypted after read; with a nil key tokens
// are stored as-is.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key, or nil to store tokens in plaintext.
}

// NewCredentialRepo creates a CredentialRepo. key must be 32 bytes for
// AES-256-GCM, or nil to disable encryption at rest.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Create inserts a new credential and returns it with ID and CreatedAt set.
func (r *CredentialRepo) Create(ctx context.Context, cred model.Credential) (model.Credential, error) {
	stored, err := r.encrypt(cred.Token)
	if err != nil {
		return model.Credential{}, fmt.Errorf("encrypt token for %q: %w", cred.Name, err)
	}

	createdAt := cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const query = `INSERT INTO credentials (name, token, team_name, user_name, is_active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)`
	result, err := r.db.Writer.ExecContext(ctx, query, cred.Name, stored, cred.TeamName, cred.UserName, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Credential{}, fmt.Errorf("create credential %q: %w", cred.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Credential{}, fmt.Errorf("last insert id: %w", err)
	}

	cred.ID = id
	cred.IsActive = true
	cred.CreatedAt = createdAt
	cred.LastUsed = nil
	return cred, nil
}

// GetActive returns the active credential with the given id, or nil, nil
// when no such active credential exists.
func (r *CredentialRepo) GetActive(ctx context.Context, id int64) (*model.Credential, error) {
	const query = `SELECT id, name, token, team_name, user_name, is_active, created_at, last_used_at
		FROM credentials WHERE id = ? AND is_active = 1`

	cred, err := r.scanCredential(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %d: %w", id, err)
	}

	return cred, nil
}

// ListActive returns all active credentials, newest first.
func (r *CredentialRepo) ListActive(ctx context.Context) ([]model.Credential, error) {
	const query = `SELECT id, name, token, team_name, user_name, is_active, created_at, last_used_at
		FROM credentials WHERE is_active = 1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		cred, err := r.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Count returns the total number of credentials, active or not.
func (r *CredentialRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM credentials`

	var n int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}

// TouchLastUsed stamps the credential's last-used timestamp.
func (r *CredentialRepo) TouchLastUsed(ctx context.Context, id int64, usedAt time.Time) error {
	const query = `UPDATE credentials SET last_used_at = ? WHERE id = ?`

	_, err := r.db.Writer.ExecContext(ctx, query, usedAt.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("touch credential %d: %w", id, err)
	}
	return nil
}

// Deactivate clears the active flag. The row is kept; credentials are never
// hard-deleted.
func (r *CredentialRepo) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE credentials SET is_active = 0 WHERE id = ?`

	_, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate credential %d: %w", id, err)
	}
	return nil
}

func (r *CredentialRepo) scanCredential(s scanner) (*model.Credential, error) {
	var cred model.Credential
	var stored string
	var isActive int
	var createdAt string
	var lastUsed sql.NullString

	err := s.Scan(&cred.ID, &cred.Name, &stored, &cred.TeamName, &cred.UserName, &isActive, &createdAt, &lastUsed)
	if err != nil {
		return nil, err
	}

	cred.Token, err = r.decrypt(stored)
	if err != nil {
		return nil, fmt.Errorf("decrypt token for %q: %w", cred.Name, err)
	}

	cred.IsActive = isActive != 0

	cred.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	if lastUsed.Valid {
		t, err := parseTime(lastUsed.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_used_at: %w", err)
		}
		cred.LastUsed = &t
	}

	return &cred, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded
// string containing the nonce (12 bytes) prepended to the ciphertext.
// With a nil key the plaintext is returned unchanged.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return plaintext, nil
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

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext. With a nil key
// the stored value is returned unchanged.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	if r.key == nil {
		return encoded, nil
	}

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
