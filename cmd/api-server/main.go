package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"charhub/internal/characters"
	"charhub/internal/middleware"
	"charhub/internal/rickmorty"
	synchub "charhub/internal/sync"
	"charhub/pkg/utils"
)

func main() {
	if err := utils.LoadDotEnv(".env"); err != nil {
		logrus.Fatalf("load .env: %v", err)
	}
	cfg, err := utils.LoadServerConfig()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	gin.SetMode(gin.ReleaseMode)

	router := newRouter(deps{
		Store:    characters.NewStore(),
		Upstream: rickmorty.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout),
		Hub:      synchub.NewHub(),
		Metrics:  middleware.NewMetrics(),
		Log:      log,
		Origin:   cfg.AllowedOrigin,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":     cfg.Addr,
			"upstream": cfg.UpstreamURL,
		}).Info("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	case err := <-errCh:
		log.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown error")
	}
	log.Info("server stopped")
}
