package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/antonvlasov/finsync/internal/config"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/models"
)

// Client-store sentinel errors.
var (
	// ErrValueNotFound is returned when no row exists for the requested
	// category/key pair.
	ErrValueNotFound = errors.New("value not found in client store")

	// ErrValueEncrypted is returned when a plain read hits a value carrying
	// the encrypted prefix. Callers must use LoadEncrypted for those.
	ErrValueEncrypted = errors.New("value is encrypted")

	// ErrValueNotEncrypted is the converse: an encrypted read hit a plain
	// JSON value.
	ErrValueNotEncrypted = errors.New("value is not encrypted")
)

// encryptedPrefix tags ciphertext values in the kv table.
const encryptedPrefix = "encrypted:"

// Well-known categories and keys.
const (
	categoryAuth    = "auth"
	categorySession = "session"

	keyPinCredential       = "pin"
	keyEmergencyCredential = "emergency"
	keyCurrentSession      = "current"
)

// clientSQLiteStore is the SQLite-backed implementation of [ClientStore].
type clientSQLiteStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewClientStore opens (creating if needed) the local SQLite database and
// ensures the kv table exists.
func NewClientStore(ctx context.Context, cfg config.ClientDB, log *logger.Logger) (ClientStore, error) {
	if err := createLocalDBFileIfNotExists(cfg.DSN); err != nil {
		log.Err(err).Str("func", "NewClientStore").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewClientStore").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewClientStore").Msg("error connecting database (ping)")
		return nil, err
	}

	if _, err = conn.ExecContext(ctx, createKVTable); err != nil {
		log.Err(err).Str("func", "NewClientStore").Msg("error creating kv table")
		return nil, fmt.Errorf("error creating kv table: %w", err)
	}
	log.Debug().Str("func", "NewClientStore").Msg("client store ready")

	return &clientSQLiteStore{db: conn, logger: log}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}

// LoadPinCredential implements [ClientStore]. A missing credential is not an
// error: it returns (nil, nil) and the auth layer reports the NO_PIN state.
func (s *clientSQLiteStore) LoadPinCredential(ctx context.Context) (*models.PinCredential, error) {
	return s.loadCredential(ctx, keyPinCredential)
}

// LoadEmergencyCredential implements [ClientStore].
func (s *clientSQLiteStore) LoadEmergencyCredential(ctx context.Context) (*models.PinCredential, error) {
	return s.loadCredential(ctx, keyEmergencyCredential)
}

// SavePinCredential implements [ClientStore].
func (s *clientSQLiteStore) SavePinCredential(ctx context.Context, cred *models.PinCredential) error {
	return s.SaveValue(ctx, categoryAuth, keyPinCredential, cred)
}

// SaveEmergencyCredential implements [ClientStore].
func (s *clientSQLiteStore) SaveEmergencyCredential(ctx context.Context, cred *models.PinCredential) error {
	return s.SaveValue(ctx, categoryAuth, keyEmergencyCredential, cred)
}

func (s *clientSQLiteStore) loadCredential(ctx context.Context, key string) (*models.PinCredential, error) {
	var cred models.PinCredential
	err := s.LoadValue(ctx, categoryAuth, key, &cred)
	if errors.Is(err, ErrValueNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// SaveSession implements [ClientStore].
func (s *clientSQLiteStore) SaveSession(ctx context.Context, session *models.Session) error {
	return s.SaveValue(ctx, categorySession, keyCurrentSession, session)
}

// LoadSession implements [ClientStore].
func (s *clientSQLiteStore) LoadSession(ctx context.Context) (*models.Session, error) {
	var session models.Session
	err := s.LoadValue(ctx, categorySession, keyCurrentSession, &session)
	if errors.Is(err, ErrValueNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession implements [ClientStore].
func (s *clientSQLiteStore) DeleteSession(ctx context.Context) error {
	return s.DeleteValue(ctx, categorySession, keyCurrentSession)
}

// SaveValue implements [ClientStore]. The value is stored as JSON.
func (s *clientSQLiteStore) SaveValue(ctx context.Context, category, key string, value any) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value %s/%s: %w", category, key, err)
	}

	if _, err = s.db.ExecContext(ctx, upsertKVValue, category, key, string(payload)); err != nil {
		log.Err(err).
			Str("func", "clientSQLiteStore.SaveValue").
			Str("category", category).
			Str("key", key).
			Msg("failed to save value")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// LoadValue implements [ClientStore]. Values carrying the encrypted prefix
// are refused with [ErrValueEncrypted].
func (s *clientSQLiteStore) LoadValue(ctx context.Context, category, key string, target any) error {
	raw, err := s.loadRaw(ctx, category, key)
	if err != nil {
		return err
	}

	if strings.HasPrefix(raw, encryptedPrefix) {
		return ErrValueEncrypted
	}

	if err = json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decode value %s/%s: %w", category, key, err)
	}

	return nil
}

// SaveEncrypted implements [ClientStore]. The ciphertext is stored verbatim
// behind the encrypted prefix.
func (s *clientSQLiteStore) SaveEncrypted(ctx context.Context, category, key, ciphertext string) error {
	log := logger.FromContext(ctx)

	if _, err := s.db.ExecContext(ctx, upsertKVValue, category, key, encryptedPrefix+ciphertext); err != nil {
		log.Err(err).
			Str("func", "clientSQLiteStore.SaveEncrypted").
			Str("category", category).
			Str("key", key).
			Msg("failed to save encrypted value")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// LoadEncrypted implements [ClientStore].
func (s *clientSQLiteStore) LoadEncrypted(ctx context.Context, category, key string) (string, error) {
	raw, err := s.loadRaw(ctx, category, key)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(raw, encryptedPrefix) {
		return "", ErrValueNotEncrypted
	}

	return strings.TrimPrefix(raw, encryptedPrefix), nil
}

// DeleteValue implements [ClientStore]. Deleting a missing value is a no-op.
func (s *clientSQLiteStore) DeleteValue(ctx context.Context, category, key string) error {
	log := logger.FromContext(ctx)

	if _, err := s.db.ExecContext(ctx, deleteKVValue, category, key); err != nil {
		log.Err(err).
			Str("func", "clientSQLiteStore.DeleteValue").
			Str("category", category).
			Str("key", key).
			Msg("failed to delete value")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// Close implements [ClientStore].
func (s *clientSQLiteStore) Close() error {
	return s.db.Close()
}

func (s *clientSQLiteStore) loadRaw(ctx context.Context, category, key string) (string, error) {
	log := logger.FromContext(ctx)

	var raw string
	err := s.db.QueryRowContext(ctx, getKVValue, category, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrValueNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "clientSQLiteStore.loadRaw").
			Str("category", category).
			Str("key", key).
			Msg("failed to load value")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return raw, nil
}
