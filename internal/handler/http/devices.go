package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

type registerDeviceRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type deviceStatusRequest struct {
	IsActive bool `json:"is_active"`
}

type deviceNameRequest struct {
	DeviceName string `json:"device_name"`
}

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.registerDevice").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.registerDevice").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	device, err := h.services.DeviceService.RegisterOrTouch(ctx, userID, req.DeviceID, req.DeviceName)
	if err != nil {
		log.Err(err).Str("func", "*Handler.registerDevice").Str("device_id", req.DeviceID).Msg("error registering device")
		writeError(w, "error registering device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.DeviceResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Device:   &device,
	}, http.StatusOK)
}

func (h *Handler) getConnectedDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getConnectedDevices").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	devices, err := h.services.DeviceService.GetConnectedDevices(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getConnectedDevices").Msg("error listing devices")
		writeError(w, "error listing devices", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.DevicesResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Devices:  devices,
	}, http.StatusOK)
}

func (h *Handler) getDeviceDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getDeviceDetails").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := chi.URLParam(r, "deviceID")

	device, err := h.services.DeviceService.GetDeviceDetails(ctx, userID, deviceID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getDeviceDetails").Str("device_id", deviceID).Msg("error getting device")
		writeError(w, "error getting device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.DeviceResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Device:   &device,
	}, http.StatusOK)
}

func (h *Handler) removeDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.removeDevice").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := chi.URLParam(r, "deviceID")

	if err := h.services.DeviceService.RemoveDevice(ctx, userID, deviceID); err != nil {
		log.Err(err).Str("func", "*Handler.removeDevice").Str("device_id", deviceID).Msg("error removing device")
		writeError(w, "error removing device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}

func (h *Handler) setDeviceActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.setDeviceActive").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := chi.URLParam(r, "deviceID")

	var req deviceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.setDeviceActive").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.DeviceService.SetDeviceActive(ctx, userID, deviceID, req.IsActive); err != nil {
		log.Err(err).Str("func", "*Handler.setDeviceActive").Str("device_id", deviceID).Msg("error updating device status")
		writeError(w, "error updating device status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}

func (h *Handler) renameDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.renameDevice").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := chi.URLParam(r, "deviceID")

	var req deviceNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.renameDevice").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.DeviceService.RenameDevice(ctx, userID, deviceID, req.DeviceName); err != nil {
		log.Err(err).Str("func", "*Handler.renameDevice").Str("device_id", deviceID).Msg("error renaming device")
		writeError(w, "error renaming device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}

func (h *Handler) getSyncMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getSyncMetadata").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := chi.URLParam(r, "deviceID")

	meta, err := h.services.DeviceService.GetSyncMetadata(ctx, userID, deviceID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getSyncMetadata").Str("device_id", deviceID).Msg("error getting sync metadata")
		writeError(w, "error getting sync metadata", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.SyncMetaResponse{ //nolint:errcheck
		Envelope: okEnvelope(),
		Meta:     &meta,
	}, http.StatusOK)
}

func (h *Handler) updateSyncMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.updateSyncMetadata").Msg("no user ID was given")
		writeError(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	deviceID := chi.URLParam(r, "deviceID")

	var meta models.SyncMeta
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		log.Err(err).Str("func", "*Handler.updateSyncMetadata").Msg("Invalid JSON was passed")
		writeError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.DeviceService.UpdateSyncMetadata(ctx, userID, deviceID, meta); err != nil {
		log.Err(err).Str("func", "*Handler.updateSyncMetadata").Str("device_id", deviceID).Msg("error updating sync metadata")
		writeError(w, "error updating sync metadata", statusFromError(err))
		return
	}

	utils.WriteJSON(w, okEnvelope(), http.StatusOK) //nolint:errcheck
}
