package store

import (
	"context"

	"github.com/antonvlasov/finsync/models"
)

// ClientStore is the device-local persistence surface: namespaced
// category/key/value rows in SQLite. Values are either plain JSON or carry
// the "encrypted:" prefix; readers branch on the prefix.
//
// It backs the credential store and session cache consumed by the auth
// layer, plus generic slots for client wiring (device identity, cached
// sync tags).
type ClientStore interface {
	LoadPinCredential(ctx context.Context) (*models.PinCredential, error)
	LoadEmergencyCredential(ctx context.Context) (*models.PinCredential, error)
	SavePinCredential(ctx context.Context, cred *models.PinCredential) error
	SaveEmergencyCredential(ctx context.Context, cred *models.PinCredential) error

	SaveSession(ctx context.Context, s *models.Session) error
	LoadSession(ctx context.Context) (*models.Session, error)
	DeleteSession(ctx context.Context) error

	SaveValue(ctx context.Context, category, key string, value any) error
	LoadValue(ctx context.Context, category, key string, target any) error
	SaveEncrypted(ctx context.Context, category, key, ciphertext string) error
	LoadEncrypted(ctx context.Context, category, key string) (string, error)
	DeleteValue(ctx context.Context, category, key string) error

	Close() error
}
