package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/olahol/melody"

	"github.com/hucha-app/hucha-api/utils"
)

// WSHandler pushes refresh signals to every connected client. The payload is
// deliberately tiny: clients react by re-fetching /state.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 64 * 1024

	// Keep-alive, required behind cloud proxies
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		clientID := uuid.New().String()
		s.Set("client_id", clientID)
		utils.LogWebSocket("connect", clientID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		clientID, _ := s.Get("client_id")
		utils.LogWebSocket("disconnect", toString(clientID))
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeError("websocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request to a websocket.
func (h *WSHandler) HandleWS(c *gin.Context) {
	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		utils.SafeError("failed to upgrade websocket: %v", err)
	}
}

// BroadcastRefresh tells every client the shared state changed.
func (h *WSHandler) BroadcastRefresh() {
	msg, _ := json.Marshal(gin.H{"type": "state"})
	if err := h.M.Broadcast(msg); err != nil {
		utils.SafeWarn("error broadcasting state refresh: %v", err)
	}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
