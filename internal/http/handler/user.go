package handler

import (
	"encoding/json"
	"net/http"

	"kcal/internal/auth"
	"kcal/internal/http/respond"
	"kcal/internal/user"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	Svc *user.Service
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !auth.CanAccess(r.Context(), userID) {
		fail(w, r, "get user", errForbidden)
		return
	}

	p, err := h.Svc.GetOrCreate(r.Context(), userID)
	if err != nil {
		fail(w, r, "get user", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"user": p})
}

// Update accepts only the mutable profile fields; anything else is rejected.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !auth.CanAccess(r.Context(), userID) {
		fail(w, r, "update user", errForbidden)
		return
	}

	var req user.UpdateProfile
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid profile update: "+err.Error())
		return
	}

	p, err := h.Svc.Update(r.Context(), userID, req)
	if err != nil {
		fail(w, r, "update user", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"user": p})
}
