// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := principal(r)
	if !ok {
		writeError(w, r, "*Handler.profile", service.ErrTokenIsExpiredOrInvalid)
		return
	}

	profile, err := h.services.UserService.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, r, "*Handler.profile", err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := principal(r)
	if !ok {
		writeError(w, r, "*Handler.updateProfile", service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "*Handler.updateProfile", err)
		return
	}
	req.UserID = userID

	profile, err := h.services.UserService.UpdateProfile(r.Context(), req)
	if err != nil {
		writeError(w, r, "*Handler.updateProfile", err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}

// findUser is the administrative lookup; the caller's scope was checked by
// the auth middleware.
func (h *Handler) findUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.services.UserService.FindUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "*Handler.findUser", err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}
