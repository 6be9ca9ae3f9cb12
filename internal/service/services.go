package service

import (
	"github.com/antonvlasov/finsync/internal/config"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
)

// Services aggregates every server-side domain service.
type Services struct {
	AuthService   AuthService
	LedgerService LedgerService
	DeviceService DeviceService
	BlobService   BlobService
}

// NewServices wires all services to their repositories and configuration.
func NewServices(storages *store.Storages, cfg *config.ServerConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:   NewAuthService(storages.UserRepository, cfg.Auth, logger),
		LedgerService: NewLedgerService(storages.LedgerRepository, storages.RecycleBinRepository, cfg.Sync, logger),
		DeviceService: NewDeviceService(storages.DeviceRepository, logger),
		BlobService:   NewBlobService(storages.BlobRepository, logger),
	}
}
