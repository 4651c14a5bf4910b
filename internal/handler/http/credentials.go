// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

func setBearer(w http.ResponseWriter, token string) {
	w.Header().Set("Authorization", "Bearer "+token)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "*Handler.signup", err)
		return
	}

	resp, err := h.services.CredentialService.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, "*Handler.signup", err)
		return
	}

	logger.FromRequest(r).Info().Str("user_id", resp.User.ID).Msg("user signed up")

	setBearer(w, resp.Token)
	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "*Handler.login", err)
		return
	}
	req.IP = utils.ClientIP(r)
	req.ClientIdentity = r.UserAgent()

	resp, err := h.services.CredentialService.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, "*Handler.login", err)
		return
	}

	logger.FromRequest(r).Debug().Str("user_id", resp.User.ID).Msg("user successfully logged in")

	setBearer(w, resp.Token)
	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	userID, scope, ok := principal(r)
	if !ok {
		writeError(w, r, "*Handler.refreshToken", service.ErrTokenIsExpiredOrInvalid)
		return
	}

	resp, err := h.services.CredentialService.RefreshToken(r.Context(), userID, scope)
	if err != nil {
		writeError(w, r, "*Handler.refreshToken", err)
		return
	}

	setBearer(w, resp.Token)
	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := principal(r)
	if !ok {
		writeError(w, r, "*Handler.changePassword", service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "*Handler.changePassword", err)
		return
	}
	req.UserID = userID

	if err := h.services.CredentialService.ChangePassword(r.Context(), req); err != nil {
		writeError(w, r, "*Handler.changePassword", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "*Handler.resetPassword", err)
		return
	}

	ack, err := h.services.CredentialService.ResetPassword(r.Context(), req)
	if err != nil {
		writeError(w, r, "*Handler.resetPassword", err)
		return
	}

	utils.WriteJSON(w, ack, http.StatusOK)
}

func (h *Handler) recoverPassword(w http.ResponseWriter, r *http.Request) {
	var req models.RecoverPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "*Handler.recoverPassword", err)
		return
	}
	req.Token = chi.URLParam(r, "token")

	if err := h.services.CredentialService.RecoverPassword(r.Context(), req); err != nil {
		writeError(w, r, "*Handler.recoverPassword", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
