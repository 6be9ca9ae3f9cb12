package http

import (
	"encoding/json"
	"net/http"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

func (h *Handler) saveBlob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.saveBlob").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var blob models.WalletBlob
	if err := json.NewDecoder(r.Body).Decode(&blob); err != nil {
		log.Err(err).Str("func", "*Handler.saveBlob").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	blob.UserID = userID

	if err := h.services.BlobService.SaveBlob(ctx, blob); err != nil {
		log.Err(err).Str("func", "*Handler.saveBlob").Str("device_id", blob.DeviceID).Msg("error saving wallet blob")
		writeError(w, "error saving wallet blob", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}

func (h *Handler) getBlob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getBlob").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := r.URL.Query().Get("device_id")

	blob, err := h.services.BlobService.GetBlob(ctx, userID, deviceID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getBlob").Str("device_id", deviceID).Msg("error getting wallet blob")
		writeError(w, "error getting wallet blob", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.BlobResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Blob:     &blob,
	}, http.StatusOK)
}

func (h *Handler) getLatestBlob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getLatestBlob").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	blob, err := h.services.BlobService.GetLatestBlob(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getLatestBlob").Msg("error getting latest wallet blob")
		writeError(w, "error getting latest wallet blob", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.BlobResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Blob:     &blob,
	}, http.StatusOK)
}

func (h *Handler) deleteBlob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.deleteBlob").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := r.URL.Query().Get("device_id")

	if err := h.services.BlobService.DeleteBlob(ctx, userID, deviceID); err != nil {
		log.Err(err).Str("func", "*Handler.deleteBlob").Str("device_id", deviceID).Msg("error deleting wallet blob")
		writeError(w, "error deleting wallet blob", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}
