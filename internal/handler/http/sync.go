package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

// itemRequest is the body of restore and permanent-delete calls.
type itemRequest struct {
	ItemID   string `json:"item_id"`
	DeviceID string `json:"device_id"`
}

func (h *Handler) createVersionedOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.createVersionedOperation").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var req models.OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.createVersionedOperation").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	record, err := h.services.LedgerService.CreateVersionedOperation(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createVersionedOperation").Msg("error appending versioned operation")
		writeError(w, "error appending versioned operation", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.OperationResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Version:  record.Version,
	}, http.StatusOK)
}

func (h *Handler) getCurrentDataState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getCurrentDataState").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var statuses []models.ItemStatus
	for _, raw := range r.URL.Query()["status"] {
		statuses = append(statuses, models.ItemStatus(raw))
	}

	states, err := h.services.LedgerService.GetCurrentDataState(ctx, userID, statuses)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getCurrentDataState").Msg("error getting current data state")
		writeError(w, "error getting current data state", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.CurrentStateResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Items:    states,
	}, http.StatusOK)
}

func (h *Handler) getItemVersionHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getItemVersionHistory").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	itemID := chi.URLParam(r, "itemID")

	var limit uint64
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.ParseUint(rawLimit, 10, 64)
		if err != nil {
			writeError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.services.LedgerService.GetItemVersionHistory(ctx, userID, itemID, limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getItemVersionHistory").Msg("error getting version history")
		writeError(w, "error getting version history", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.VersionHistoryResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Records:  records,
	}, http.StatusOK)
}

func (h *Handler) restoreItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.restoreItem").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.restoreItem").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.LedgerService.RestoreItem(ctx, userID, req.ItemID, req.DeviceID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.restoreItem").Str("item_id", req.ItemID).Msg("error restoring item")
		writeError(w, "error restoring item", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.RestoreResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		ItemType: result.ItemType,
		Version:  result.Version,
	}, http.StatusOK)
}

func (h *Handler) permanentlyDeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.permanentlyDeleteItem").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.permanentlyDeleteItem").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.LedgerService.PermanentlyDeleteItem(ctx, userID, req.ItemID, req.DeviceID); err != nil {
		log.Err(err).Str("func", "*Handler.permanentlyDeleteItem").Str("item_id", req.ItemID).Msg("error permanently deleting item")
		writeError(w, "error permanently deleting item", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}

func (h *Handler) getRecycleBinItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getRecycleBinItems").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	items, err := h.services.LedgerService.GetRecycleBinItems(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getRecycleBinItems").Msg("error listing recycle bin")
		writeError(w, "error listing recycle bin", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.RecycleBinResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Items:    items,
	}, http.StatusOK)
}

func (h *Handler) cleanupRecycleBin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.cleanupRecycleBin").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	purged, err := h.services.LedgerService.CleanupExpiredForUser(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.cleanupRecycleBin").Msg("error cleaning up recycle bin")
		writeError(w, "error cleaning up recycle bin", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.CleanupResponse{ //nolint:errcheck
		Envelope:      okEnvelope(),
		PurgedItemIDs: purged,
	}, http.StatusOK)
}
