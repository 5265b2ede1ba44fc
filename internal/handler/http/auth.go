package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	token, err := h.services.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	_ = utils.WriteJSON(w, map[string]any{"ok": true, "token": token.SignedString}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.services.AuthService.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true}, http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.AuthService.Me(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.MeResponse{User: &user}, http.StatusOK)
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.RecoveryService.ForgotPassword(r.Context(), req.Username); err != nil {
		writeError(w, r, err)
		return
	}

	// identical response for known and unknown usernames
	_ = utils.WriteJSON(w, models.OKResponse{OK: true}, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.RecoveryService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	_ = utils.WriteJSON(w, models.OKResponse{OK: true}, http.StatusOK)
}
