package http

import (
	"encoding/json"
	"net/http"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	intentHeader := r.Header.Get(models.DeleteIntentHeader)
	if err := h.services.LedgerService.Save(ctx, req.Key, req.Value, intentHeader); err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true}, http.StatusOK)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	value, err := h.services.LedgerService.Load(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.ValueResponse{Value: value}, http.StatusOK)
}

func (h *Handler) deleteKey(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	intentHeader := r.Header.Get(models.DeleteIntentHeader)

	if err := h.services.LedgerService.Delete(r.Context(), key, intentHeader); err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true}, http.StatusOK)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.services.LedgerService.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, snapshot, http.StatusOK)
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	result, err := h.services.BackupService.Backup(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) importData(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	intentHeader := r.Header.Get(models.DeleteIntentHeader)
	if err := h.services.LedgerService.Import(r.Context(), req, intentHeader); err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true}, http.StatusOK)
}
