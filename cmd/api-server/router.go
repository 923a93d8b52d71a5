package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"charhub/internal/characters"
	"charhub/internal/middleware"
	synchub "charhub/internal/sync"
)

type deps struct {
	Store    *characters.Store
	Upstream characters.Upstream
	Hub      *synchub.Hub
	Metrics  *middleware.Metrics
	Log      *logrus.Logger
	Origin   string
}

func newRouter(d deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(d.Log),
		middleware.CORS(d.Origin),
		d.Metrics.Instrument(),
	)

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"personajes": d.Store.Len(),
			"ws_clients": stats.WSClients,
		})
	})

	router.GET("/metrics", d.Metrics.Handler())
	router.GET("/ws", synchub.WSHandler(d.Hub, d.Log.WithField("component", "ws")))

	h := characters.NewHandler(d.Store, d.Upstream, d.Hub, d.Log.WithField("component", "characters"))
	h.RegisterRoutes(router.Group("/api"))

	return router
}
