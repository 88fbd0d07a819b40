package http

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/domain"
	"github.com/moeenhq/diwan/internal/report"
)

// uploadAudio receives one participant's recorded track and parks it until
// report generation. The handle never leaves the server; the client only
// learns that the upload landed.
func (h *handlers) uploadAudio(c *gin.Context) {
	roomID := domain.RoomID(c.PostForm("roomId"))
	participantID := c.PostForm("participantId")
	role := domain.ParseRole(c.PostForm("role"))
	if roomID == "" || participantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "roomId and participantId are required"})
		return
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "audio file is required"})
		return
	}
	defer file.Close()

	handle, err := h.Store.Save(filepath.Base(header.Filename), file)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("audio save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not store audio"})
		return
	}

	h.Ledger.Record(roomID, report.ArtifactRef{
		Handle:        handle,
		ParticipantID: participantID,
		Role:          role,
	})
	log.Info().Str("module", "adapters.http").Str("room", string(roomID)).
		Str("participant", participantID).Msg("audio artifact recorded")

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"roomId":        roomID,
		"participantId": participantID,
		"pending":       h.Ledger.Count(roomID),
	})
}

// sessionReport runs the full pipeline for the room's artifacts: the ones
// parked by upload-audio plus any the caller names explicitly. Artifacts
// are drained up front: generation consumes them whether or not every
// stage succeeds.
func (h *handlers) sessionReport(c *gin.Context) {
	var p struct {
		RoomID    string               `json:"roomId" binding:"required"`
		Artifacts []report.ArtifactRef `json:"artifacts"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "roomId is required"})
		return
	}

	roomID := domain.RoomID(p.RoomID)
	refs := append(h.Ledger.Take(roomID), p.Artifacts...)

	rep, err := h.Pipeline.Generate(c.Request.Context(), roomID, refs)
	if err != nil {
		if errors.Is(err, domain.ErrNoArtifacts) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no audio artifacts for this session"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Str("room", p.RoomID).Msg("report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "report generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": rep})
}
