package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"

	"github.com/moeenhq/diwan/internal/compliance"
	"github.com/moeenhq/diwan/internal/domain"
)

type handlers struct {
	Deps
	codes *codeStore
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Registry.Rooms()})
}

func (h *handlers) sessionRules(c *gin.Context) {
	c.JSON(http.StatusOK, compliance.SessionRules)
}

// webrtcConfig hands clients the ICE configuration they dial the mesh
// with. Server-side and client-side agree on one source of truth.
func (h *handlers) webrtcConfig(c *gin.Context) {
	cfg := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: h.Cfg.STUNServers},
		},
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": cfg.ICEServers})
}

func (h *handlers) alerts(c *gin.Context) {
	roomID := domain.RoomID(c.Param("roomId"))
	c.JSON(http.StatusOK, gin.H{
		"roomId": roomID,
		"alerts": h.Monitor.Alerts(roomID),
	})
}
