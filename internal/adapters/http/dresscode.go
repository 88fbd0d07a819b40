package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/compliance"
	"github.com/moeenhq/diwan/internal/domain"
)

// AttireClassifier judges one camera frame against the dress code.
type AttireClassifier interface {
	ClassifyAttire(ctx context.Context, imageBase64 string) (domain.AttireDetection, error)
}

// checkDressCode is the synchronous pre-join check: the client submits a
// frame before entering the room and gets the verdict right away. The
// in-session monitor runs the same rules on its own schedule.
func (h *handlers) checkDressCode(c *gin.Context) {
	var p struct {
		ImageBase64   string `json:"imageBase64" binding:"required"`
		ParticipantID string `json:"participantId"`
		Role          string `json:"role"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "imageBase64 is required"})
		return
	}

	role := domain.ParseRole(p.Role)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Cfg.CapabilityTimeout)
	defer cancel()

	detection, err := h.Classifier.ClassifyAttire(ctx, p.ImageBase64)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("dress-code classification failed")
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrMalformedResponse) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"success": false, "error": "classification unavailable"})
		return
	}

	c.JSON(http.StatusOK, compliance.Result(p.ParticipantID, role, detection, time.Now()))
}
