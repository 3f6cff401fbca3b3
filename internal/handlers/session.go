package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/internal/middleware"
	"github.com/reelwise/reelwise/internal/services"
	"github.com/reelwise/reelwise/internal/validation"
	"github.com/reelwise/reelwise/pkg/models"
)

type SessionHandler struct {
	logger     *logrus.Logger
	services   *services.Services
	config     *config.Config
	catalog    *services.FeatureCatalog
	similarity *services.SimilarityMatrix
	validate   *validator.Validate
}

func NewSessionHandler(
	logger *logrus.Logger,
	svc *services.Services,
	cfg *config.Config,
	catalog *services.FeatureCatalog,
	similarity *services.SimilarityMatrix,
) *SessionHandler {
	return &SessionHandler{
		logger:     logger,
		services:   svc,
		config:     cfg,
		catalog:    catalog,
		similarity: similarity,
		validate:   validator.New(),
	}
}

// Create logs a user in: it builds a fresh UserProfile from the submitted
// ratings, registers it under a new session and returns the session token
// together with the top-feature summary.
func (h *SessionHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body")
		return
	}
	if err := validation.ValidateSessionRequest(body); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	var req models.SessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	profile, err := h.services.Profile.BuildProfile(
		c.Request.Context(), req.UserID, req.Ratings, h.catalog, h.similarity)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", vErr.Error())
			return
		}
		h.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to build profile")
		writeError(c, http.StatusInternalServerError, "PROFILE_BUILD_FAILED", "Failed to build user profile")
		return
	}

	h.services.Sessions.Register(profile)

	token, expiresAt, err := h.services.Auth.GenerateToken(profile.SessionID, profile.UserID)
	if err != nil {
		h.services.Sessions.Revoke(profile.SessionID)
		h.logger.WithError(err).Error("Failed to issue session token")
		writeError(c, http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", "Failed to issue session token")
		return
	}

	c.JSON(http.StatusCreated, models.SessionResponse{
		SessionID:     profile.SessionID,
		Token:         token,
		ExpiresAt:     expiresAt,
		TopFeatures:   profile.TopFeatures,
		SkippedMovies: profile.SkippedMovies,
	})
}

// Delete revokes the current session and discards its profile.
func (h *SessionHandler) Delete(c *gin.Context) {
	claims := c.MustGet(middleware.ContextClaims).(*models.SessionClaims)

	h.services.Sessions.Revoke(claims.SessionID)
	if err := h.services.Auth.RevokeToken(claims.SessionID); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke session token")
	}

	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
