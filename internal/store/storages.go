package store

import "github.com/antonvlasov/finsync/internal/logger"

// Storages aggregates every server-side repository behind one constructor.
type Storages struct {
	UserRepository       UserRepository
	LedgerRepository     LedgerRepository
	RecycleBinRepository RecycleBinRepository
	DeviceRepository     DeviceRepository
	BlobRepository       BlobRepository
}

// NewStorages wires all repositories to the shared database connection.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:       NewUserRepository(db, log),
		LedgerRepository:     NewLedgerRepository(db, log),
		RecycleBinRepository: NewRecycleBinRepository(db, log),
		DeviceRepository:     NewDeviceRepository(db, log),
		BlobRepository:       NewBlobRepository(db, log),
	}
}
