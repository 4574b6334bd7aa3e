package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tazhibayda/tasks-service/docs"
	"github.com/tazhibayda/tasks-service/internal/auth"
	"github.com/tazhibayda/tasks-service/internal/config"
	api "github.com/tazhibayda/tasks-service/internal/http"
	"github.com/tazhibayda/tasks-service/internal/log"
	"github.com/tazhibayda/tasks-service/internal/metrics"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
	"github.com/tazhibayda/tasks-service/internal/security"
)

// @title tasks-service API
// @version 1.0
// @description Task management backend with local and Google authentication.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Production())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Sugar().Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Sugar().Fatalf("mongo connect: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Fatalf("mongo indexes: %v", err)
	}

	events := queue.NewNoop()
	if cfg.RabbitURL != "" {
		events, err = queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Sugar().Fatalf("rabbit connect: %v", err)
		}
	}
	defer events.Close()

	tokens, err := security.NewTokens(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		logger.Sugar().Fatalf("tokens: %v", err)
	}

	var google *oauth.Google
	if cfg.GoogleConfigured() {
		google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleSecret, cfg.GoogleRedirect, cfg.OAuthStateKey)
	} else {
		log.Infof("google oauth disabled: credentials not configured")
	}

	authSvc := auth.NewService(store, security.NewHasher(cfg.BcryptCost), tokens, events)

	metrics.MustRegister()

	h := api.NewHandler(authSvc, store, google, store, store, events, cfg)
	r := api.NewRouter(h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	log.Infof("tasks-service listening on :%s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof("signal: %s, shutting down", s)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server error: %v", err)
		}
	}
}
