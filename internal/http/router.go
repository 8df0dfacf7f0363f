package http

import (
	"log/slog"
	"net/http"

	"kcal/internal/auth"
	"kcal/internal/config"
	"kcal/internal/food"
	"kcal/internal/http/handler"
	mw "kcal/internal/http/middleware"
	"kcal/internal/http/respond"
	"kcal/internal/kv"
	"kcal/internal/meal"
	"kcal/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the router wires its handlers to.
// JWT is nil when auth is disabled; Notifier is optional.
type Deps struct {
	Store    kv.Store
	JWT      *auth.JWT
	Notifier user.Notifier
	Log      *slog.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	logger := d.Log
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recover(logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	users := &user.Service{Store: d.Store, Notifier: d.Notifier}
	catalog := &food.Catalog{Store: d.Store}
	ledger := &meal.Ledger{Store: d.Store, Users: users}

	uh := &handler.UserHandler{Svc: users}
	fh := &handler.FoodHandler{Catalog: catalog}
	mh := &handler.MealHandler{Ledger: ledger}
	sh := &handler.SummaryHandler{Ledger: ledger}

	r.Group(func(r chi.Router) {
		if d.JWT != nil {
			r.Use(auth.RequireAuth(d.JWT))
		}

		r.Get("/user/{userId}", uh.Get)
		r.Post("/user/{userId}", uh.Update)

		r.Route("/food-items", func(r chi.Router) {
			r.Get("/", fh.List)
			r.Post("/add", fh.Add)
			r.Post("/update", fh.Replace)
			r.Delete("/{foodId}", fh.Remove)
		})

		r.Post("/meals", mh.Save)
		r.Get("/meals/{userId}/{date}", mh.List)
		r.Delete("/meals/{userId}/{date}/{mealId}", mh.Delete)

		r.Get("/daily-summary/{userId}/{date}", sh.Daily)
		r.Get("/monthly-summary/{userId}/{year}/{month}", sh.Monthly)
	})

	return r
}
