package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var welcomeFrame = []byte(`{"type":"welcome","transport":"websocket"}`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the page is served from anywhere in the demo
	},
}

func WSHandler(hub *Hub, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Warn("[ws] upgrade failed")
			return
		}

		if err := hub.JoinWS(ws, welcomeFrame); err != nil {
			log.WithError(err).Warn("[ws] welcome failed")
			_ = ws.Close()
			return
		}
		log.WithField("remote", c.Request.RemoteAddr).Info("[ws] client connected")

		// incoming messages are ignored; reading detects the close
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.WithField("remote", c.Request.RemoteAddr).Info("[ws] client disconnected")
	}
}
