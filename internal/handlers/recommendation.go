package handlers

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/internal/middleware"
	"github.com/reelwise/reelwise/internal/services"
	"github.com/reelwise/reelwise/pkg/models"
)

type RecommendationHandler struct {
	logger   *logrus.Logger
	services *services.Services
	config   *config.Config

	// newRand is swapped for a fixed source in tests.
	newRand func() *rand.Rand
}

func NewRecommendationHandler(logger *logrus.Logger, svc *services.Services, cfg *config.Config) *RecommendationHandler {
	return &RecommendationHandler{
		logger:   logger,
		services: svc,
		config:   cfg,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Get samples a recommendation set from the session's top features. The
// count and temperature query parameters override the configured defaults for
// this request only.
func (h *RecommendationHandler) Get(c *gin.Context) {
	profile := c.MustGet(middleware.ContextProfile).(*models.UserProfile)

	count := h.config.Recommendation.RecommendationsPerFeature
	if countStr := c.Query("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil || parsed < 0 {
			writeError(c, http.StatusBadRequest, "VALIDATION_FAILED",
				"count must be a non-negative integer")
			return
		}
		count = parsed
	}

	temperature := h.config.Recommendation.SoftmaxTemperature
	if tempStr := c.Query("temperature"); tempStr != "" {
		parsed, err := strconv.ParseFloat(tempStr, 64)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "VALIDATION_FAILED",
				"temperature must be a positive number")
			return
		}
		temperature = parsed
	}

	set, err := h.services.Bandit.Recommend(profile.TopFeatures, temperature, count, h.newRand())
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", vErr.Error())
			return
		}
		h.logger.WithError(err).WithField("user_id", profile.UserID).
			Error("Failed to sample recommendations")
		writeError(c, http.StatusInternalServerError, "RECOMMENDATION_FAILED",
			"Failed to generate recommendations")
		return
	}

	c.JSON(http.StatusOK, models.RecommendationResponse{
		SessionID:       profile.SessionID,
		UserID:          profile.UserID,
		Recommendations: *set,
	})
}
