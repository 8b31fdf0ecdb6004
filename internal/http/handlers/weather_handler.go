package handlers

import (
	"context"
	"errors"
	"net/http"

	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/repo"
	"paso-monitor-server/internal/utils"

	"github.com/gin-gonic/gin"
)

type WeatherStore interface {
	Latest(ctx context.Context, city string) (*models.WeatherSnapshot, error)
}

type WeatherHandler struct {
	weather WeatherStore
	city    string
}

func NewWeatherHandler(weather WeatherStore, city string) *WeatherHandler {
	return &WeatherHandler{weather: weather, city: city}
}

func (h *WeatherHandler) Get(c *gin.Context) {
	snap, err := h.weather.Latest(c.Request.Context(), h.city)
	if err != nil {
		if errors.Is(err, repo.ErrNoWeather) {
			utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "no weather snapshot recorded", nil))
			return
		}
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}
