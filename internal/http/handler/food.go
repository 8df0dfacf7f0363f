package handler

import (
	"encoding/json"
	"net/http"

	"kcal/internal/food"
	"kcal/internal/http/respond"

	"github.com/go-chi/chi/v5"
)

type FoodHandler struct {
	Catalog *food.Catalog
}

func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.List(r.Context())
	if err != nil {
		fail(w, r, "list food items", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"foodItems": items})
}

func (h *FoodHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req food.NewFood
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	item, err := h.Catalog.Add(r.Context(), req)
	if err != nil {
		fail(w, r, "add food item", err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"foodItem": item})
}

func (h *FoodHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Remove(r.Context(), chi.URLParam(r, "foodId")); err != nil {
		fail(w, r, "delete food item", err)
		return
	}
	respond.OK(w, http.StatusOK, nil)
}

type replaceFoodReq struct {
	FoodItems json.RawMessage `json:"foodItems"`
}

func (h *FoodHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceFoodReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, "update food items", food.ErrInvalidPayload)
		return
	}

	if _, err := h.Catalog.ReplaceAll(r.Context(), req.FoodItems); err != nil {
		fail(w, r, "update food items", err)
		return
	}
	respond.OK(w, http.StatusOK, nil)
}
