package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"kcal/internal/food"
	"kcal/internal/http/respond"
	"kcal/internal/meal"
)

var errForbidden = errors.New("forbidden")

// fail maps a service error to its status and writes the failure envelope.
// Anything unrecognized is a store failure and its message is passed through.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, food.ErrDuplicateFood),
		errors.Is(err, food.ErrInvalidPayload),
		errors.Is(err, meal.ErrInvalidMeal):
		status = http.StatusBadRequest
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), op+" failed", slog.Any("error", err))
	}
	respond.Error(w, status, err.Error())
}

func badJSON(w http.ResponseWriter) {
	respond.Error(w, http.StatusBadRequest, "bad json")
}
