package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"charhub/internal/middleware"
	"charhub/internal/rickmorty"
	"charhub/pkg/utils"
)

// mirror-server serves a local copy of the character API at GET /api/character
// so the proxy can be pointed at it with CHARHUB_UPSTREAM_URL.
func main() {
	if err := utils.LoadDotEnv(".env"); err != nil {
		logrus.Fatalf("load .env: %v", err)
	}
	cfg, err := utils.LoadMirrorConfig()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := utils.NewLogger(cfg.LogLevel, "text")

	mirror, err := rickmorty.LoadMirror(cfg.DataFile)
	if err != nil {
		log.WithError(err).Fatal("cannot load mirror data")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))
	mirror.RegisterRoutes(router.Group("/api"))

	log.WithFields(logrus.Fields{
		"addr": cfg.Addr,
		"file": cfg.DataFile,
	}).Info("mirror-server listening")
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.WithError(err).Fatal("mirror-server stopped")
	}
}
