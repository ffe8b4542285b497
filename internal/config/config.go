// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
)

// encryptionKeyBytes is the required decoded length of the token
// encryption key (AES-256).
const encryptionKeyBytes = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	EncryptionKey []byte // nil when tokens are stored in plaintext
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: SLACKDECK_LISTEN_ADDR (127.0.0.1:8080),
// SLACKDECK_DB_PATH (slackdeck.db), and SLACKDECK_ENCRYPTION_KEY, a hex-encoded
// 32-byte key for encrypting stored tokens at rest. When the key is absent,
// tokens are stored in plaintext.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("SLACKDECK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "slackdeck.db"
	if v, ok := os.LookupEnv("SLACKDECK_DB_PATH"); ok {
		dbPath = v
	}

	var encryptionKey []byte
	if v, ok := os.LookupEnv("SLACKDECK_ENCRYPTION_KEY"); ok && v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("SLACKDECK_ENCRYPTION_KEY is not valid hex: %w", err)
		}
		if len(decoded) != encryptionKeyBytes {
			return nil, fmt.Errorf("SLACKDECK_ENCRYPTION_KEY must decode to %d bytes, got %d", encryptionKeyBytes, len(decoded))
		}
		encryptionKey = decoded
	}

	return &Config{
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
		EncryptionKey: encryptionKey,
	}, nil
}
