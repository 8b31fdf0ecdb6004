package handlers

import (
	"context"
	"errors"
	"math/rand"
	"net/http"

	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/repo"
	"paso-monitor-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// passImages is the decorative pool served alongside the public status; the
// frontend shows one at random on every load.
var passImages = []string{
	"andes_sunrise.jpg",
	"cristo_redentor.jpg",
	"cumbre_nevada.jpg",
	"ruta_internacional.jpg",
	"valle_invierno.jpg",
}

type PassStore interface {
	Get(ctx context.Context) (*models.PassStatus, error)
}

type PassHandler struct {
	statuses PassStore
}

func NewPassHandler(statuses PassStore) *PassHandler {
	return &PassHandler{statuses: statuses}
}

// Get returns the current pass record to authenticated users.
func (h *PassHandler) Get(c *gin.Context) {
	status, err := h.statuses.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, repo.ErrNoStatus) {
			utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "no pass status recorded", nil))
			return
		}
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetPublic serves the unauthenticated landing view. It always includes a
// random image; when no record exists it still answers with a placeholder
// status so the page degrades instead of breaking.
func (h *PassHandler) GetPublic(c *gin.Context) {
	image := passImages[rand.Intn(len(passImages))]

	status, err := h.statuses.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "no pass status recorded",
			"status":  "desconocido",
			"image":   image,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":       status.Name,
		"status":     status.Status,
		"detail":     status.Detail,
		"source":     status.Source,
		"updated_at": status.UpdatedAt,
		"image":      image,
	})
}
