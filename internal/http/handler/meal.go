package handler

import (
	"encoding/json"
	"net/http"

	"kcal/internal/auth"
	"kcal/internal/http/respond"
	"kcal/internal/meal"

	"github.com/go-chi/chi/v5"
)

type MealHandler struct {
	Ledger *meal.Ledger
}

func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, date := chi.URLParam(r, "userId"), chi.URLParam(r, "date")
	if !auth.CanAccess(r.Context(), userID) {
		fail(w, r, "list meals", errForbidden)
		return
	}

	meals, err := h.Ledger.ListForDate(r.Context(), userID, date)
	if err != nil {
		fail(w, r, "list meals", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"meals": meals})
}

func (h *MealHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req meal.Meal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}
	if !auth.CanAccess(r.Context(), req.UserID) {
		fail(w, r, "save meal", errForbidden)
		return
	}

	saved, sum, err := h.Ledger.Save(r.Context(), req)
	if err != nil {
		fail(w, r, "save meal", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"meal": saved, "summary": sum})
}

func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !auth.CanAccess(r.Context(), userID) {
		fail(w, r, "delete meal", errForbidden)
		return
	}

	sum, err := h.Ledger.Delete(r.Context(), userID, chi.URLParam(r, "date"), chi.URLParam(r, "mealId"))
	if err != nil {
		fail(w, r, "delete meal", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"summary": sum})
}
