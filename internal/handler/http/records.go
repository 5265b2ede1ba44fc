package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/service"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// the payload may arrive wrapped in a "data" field or as the bare object
	var wrapped models.ItemRequest
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		raw = wrapped.Data
	}

	id, err := h.services.RecordService.AppendItem(ctx, raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true, ID: id}, http.StatusOK)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.services.RecordService.ListItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, items, http.StatusOK)
}

func (h *Handler) saveClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// POST creates, PUT updates; reject mismatched bodies early
	if r.Method == http.MethodPost {
		client.ID = 0
	} else if client.ID == 0 {
		writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	id, err := h.services.RecordService.SaveClient(ctx, client)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true, ID: id}, http.StatusOK)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	intentHeader := r.Header.Get(models.DeleteIntentHeader)
	deleted, err := h.services.RecordService.DeleteClient(r.Context(), id, intentHeader)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, r, store.ErrClientNotFound)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true, ID: id}, http.StatusOK)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.services.RecordService.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, clients, http.StatusOK)
}
