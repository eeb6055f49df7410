package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/auth"
)

const pingPeriod = 25 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an authenticated request and keeps the connection
// registered until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("Websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	c := &Client{UserID: userID, conn: conn}
	h.Register(c)
	logrus.Debugf("Realtime client connected for user %s", userID)

	done := make(chan struct{})
	go func() {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					h.Unregister(c)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			h.Unregister(c)
			return
		}
	}
}
