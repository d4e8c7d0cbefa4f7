package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"widget-dashboard-backend/internal/apiclient"
	apperrors "widget-dashboard-backend/internal/errors"

	"github.com/gin-gonic/gin"
)

// writeFetchError maps an upstream fetch failure to an HTTP response.
// Upstream failures surface as gateway errors so the dashboard can tell
// its own faults from the widget's API misbehaving.
func writeFetchError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrInvalidJSONResponse) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch widget data", "details": err.Error()})
		return
	}

	status := http.StatusBadGateway
	switch apiErr.Kind {
	case apiclient.KindRateLimit:
		status = http.StatusTooManyRequests
		c.Header("Retry-After", strconv.Itoa(apiErr.RetryAfterSeconds))
	case apiclient.KindTimeout:
		status = http.StatusGatewayTimeout
	}

	c.JSON(status, gin.H{
		"error":     apiErr.Message,
		"kind":      string(apiErr.Kind),
		"can_retry": apiErr.CanRetry,
	})
}
