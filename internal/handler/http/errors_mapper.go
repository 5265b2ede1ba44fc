package http

import (
	"errors"
	"net/http"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/service"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrRateLimited:             http.StatusTooManyRequests,
	service.ErrBackupsDisabled:         http.StatusBadRequest,

	intent.ErrIntentRequired: http.StatusConflict,

	store.ErrKeyNotFound:       http.StatusNotFound,
	store.ErrClientNotFound:    http.StatusNotFound,
	store.ErrResetTokenInvalid: http.StatusUnauthorized,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to its HTTP status and writes the JSON
// error envelope. Internal errors are masked with a generic message so
// storage details never leak to the network.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Err(err).Msg("unexpected error")
		message = http.StatusText(http.StatusInternalServerError)
	}

	_ = utils.WriteJSON(w, models.ErrorResponse{Error: message}, status)
}
