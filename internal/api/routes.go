// Package api wires the HTTP surface: health, listener enrollment and
// the WebSocket utterance endpoint.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/auth"
	"github.com/emberhome/ember/internal/session"
)

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	hub *session.Hub,
	signer *auth.Signer,
	secret string,
	devices []entities.Device,
	history repositories.InteractionHistory,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "ember-server",
			"listeners": hub.Count(),
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/listener/auth", func(c echo.Context) error {
		return listenerAuth(c, signer, secret, logger)
	})

	v1.GET("/devices", func(c echo.Context) error {
		return c.JSON(http.StatusOK, devices)
	})

	v1.GET("/interactions", func(c echo.Context) error {
		return recentInteractions(c, history)
	})

	// WebSocket endpoint. Auth happens inside the protocol handshake,
	// not at upgrade time, so failed secrets map to close code 4001.
	e.GET("/ws", func(c echo.Context) error {
		return session.Handle(hub, c)
	})
}

// recentInteractions serves the latest exchanges for one listener
// host, for the companion dashboard.
func recentInteractions(c echo.Context, history repositories.InteractionHistory) error {
	if history == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "history_unavailable",
			Message: "Interaction history is not configured",
		})
	}

	host := c.QueryParam("host")
	if host == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Host is required",
		})
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	interactions, err := history.RecentByHost(c.Request().Context(), host, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "history_query_failed",
			Message: "Failed to load interactions",
		})
	}
	if interactions == nil {
		interactions = []entities.Interaction{}
	}
	return c.JSON(http.StatusOK, interactions)
}

// listenerAuth exchanges the shared secret for a management token.
func listenerAuth(c echo.Context, signer *auth.Signer, secret string, logger *zap.Logger) error {
	var req ListenerAuthRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind listener auth request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.Host == "" || req.Secret == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Host and secret are required",
		})
	}

	if req.Secret != secret {
		logger.Warn("Listener authentication failed", zap.String("host", req.Host))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid secret",
		})
	}

	token, err := signer.IssueListenerToken(req.Host, req.Room)
	if err != nil {
		logger.Error("Failed to issue listener token",
			zap.String("host", req.Host),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	logger.Info("Listener authenticated", zap.String("host", req.Host), zap.String("room", req.Room))

	return c.JSON(http.StatusOK, ListenerAuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		Host:      req.Host,
	})
}
