package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/gin-gonic/gin"
)

// SyncCV accepts a full CV document and stores it, last write wins.
func (h *Handlers) SyncCV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "CV document too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	res, err := h.cvs.Sync(c.Request.Context(), json.RawMessage(body))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingCVID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "CV id is required"})
		case errors.Is(err, common.ErrInvalidCVDocument):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CV document"})
		default:
			h.log.Error(c.Request.Context(), "cv sync failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       res.ID,
		"syncedAt": res.SyncedAt.Format(time.RFC3339Nano),
	})
}
