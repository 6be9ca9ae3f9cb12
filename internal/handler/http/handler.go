package http

import (
	"net/http"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/service"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

type Handler struct {
	services *service.Services

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// writeError sends a failure envelope. Remote callers treat failures as
// values, so every error response carries the same JSON shape.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	utils.WriteJSON(w, models.Envelope{Success: false, Error: message}, statusCode) //nolint:errcheck
}

func okEnvelope() models.Envelope {
	return models.Envelope{Success: true}
}
