package handler

import (
	"net/http"
	"strconv"

	"kcal/internal/auth"
	"kcal/internal/http/respond"
	"kcal/internal/meal"

	"github.com/go-chi/chi/v5"
)

type SummaryHandler struct {
	Ledger *meal.Ledger
}

func (h *SummaryHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !auth.CanAccess(r.Context(), userID) {
		fail(w, r, "get daily summary", errForbidden)
		return
	}

	sum, err := h.Ledger.Daily(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		fail(w, r, "get daily summary", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"summary": sum})
}

func (h *SummaryHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !auth.CanAccess(r.Context(), userID) {
		fail(w, r, "get monthly summary", errForbidden)
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid month")
		return
	}

	sums, err := h.Ledger.Monthly(r.Context(), userID, year, month)
	if err != nil {
		fail(w, r, "get monthly summary", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"summaries": sums})
}
