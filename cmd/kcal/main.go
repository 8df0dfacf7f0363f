package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kcal/internal/auth"
	"kcal/internal/config"
	"kcal/internal/db"
	"kcal/internal/food"
	httpx "kcal/internal/http"
	"kcal/internal/jobs"
	"kcal/internal/kv"
	"kcal/internal/logging"
	"kcal/internal/meal"
	"kcal/internal/user"

	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Log)

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb, cfg.KVTable); err != nil {
		log.Fatal(err)
	}

	store := kv.NewPostgres(gdb, cfg.KVTable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := (&food.Catalog{Store: store}).EnsureSeeded(ctx); err != nil {
		log.Fatal(err)
	}

	deps := httpx.Deps{Store: store, Log: logger}
	if cfg.Auth.Enabled() {
		deps.JWT = auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}

	// worker
	if cfg.Reflag.Enabled {
		jobsRepo := &jobs.Repo{DB: gdb}
		deps.Notifier = jobsRepo

		worker := &jobs.Worker{
			ID:        "worker-" + uuid.NewString(),
			Queue:     jobsRepo,
			Reflagger: &meal.Ledger{Store: store, Users: &user.Service{Store: store}},
			Interval:  cfg.Reflag.PollInterval,
			Log:       logger,
		}
		go worker.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening",
			slog.String("addr", cfg.HTTPAddr),
			slog.Bool("auth", cfg.Auth.Enabled()),
			slog.Bool("reflag", cfg.Reflag.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
