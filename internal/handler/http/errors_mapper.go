package http

import (
	"errors"
	"net/http"

	"github.com/antonvlasov/finsync/internal/service"
	"github.com/antonvlasov/finsync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrInvalidOperation:        http.StatusBadRequest,
	service.ErrPayloadHashMismatch:     http.StatusBadRequest,
	service.ErrNoRestorableData:        http.StatusConflict,
	service.ErrItemNotRecoverable:      http.StatusGone,
	service.ErrInvalidDeviceName:       http.StatusBadRequest,

	store.ErrLoginAlreadyExists:      http.StatusConflict,
	store.ErrNoUserWasFound:          http.StatusNotFound,
	store.ErrItemNotFound:            http.StatusNotFound,
	store.ErrItemPermanentlyDeleted:  http.StatusGone,
	store.ErrRecycleEntryNotFound:    http.StatusNotFound,
	store.ErrDeviceNotFound:          http.StatusNotFound,
	store.ErrBlobNotFound:            http.StatusNotFound,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
