package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/params", h.params)
	})

	// routes behind the JWT gate
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/api/sync", func(r chi.Router) {
			r.Post("/operations", h.createVersionedOperation)
			r.Get("/state", h.getCurrentDataState)
			r.Get("/items/{itemID}/history", h.getItemVersionHistory)
			r.Post("/items/restore", h.restoreItem)
			r.Post("/items/permanent-delete", h.permanentlyDeleteItem)
			r.Get("/recycle-bin", h.getRecycleBinItems)
			r.Post("/recycle-bin/cleanup", h.cleanupRecycleBin)

			r.Put("/blob", h.saveBlob)
			r.Get("/blob", h.getBlob)
			r.Delete("/blob", h.deleteBlob)
			r.Get("/blob/latest", h.getLatestBlob)
		})

		r.Route("/api/devices", func(r chi.Router) {
			r.Post("/", h.registerDevice)
			r.Get("/", h.getConnectedDevices)
			r.Get("/{deviceID}", h.getDeviceDetails)
			r.Delete("/{deviceID}", h.removeDevice)
			r.Put("/{deviceID}/status", h.setDeviceActive)
			r.Put("/{deviceID}/name", h.renameDevice)
			r.Get("/{deviceID}/sync-meta", h.getSyncMetadata)
			r.Put("/{deviceID}/sync-meta", h.updateSyncMetadata)
		})
	})

	return router
}
