package handlers

import (
	"net/http"
	"strconv"
	"time"

	apperrors "widget-dashboard-backend/internal/errors"
	"widget-dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WidgetHandler handles HTTP requests for widgets and their data
type WidgetHandler struct {
	widgetService service.WidgetServiceInterface
	scheduler     *service.RefreshScheduler
}

// NewWidgetHandler creates a new widget handler. scheduler may be nil when
// auto-refresh is not wired (tests).
func NewWidgetHandler(widgetService service.WidgetServiceInterface, scheduler *service.RefreshScheduler) *WidgetHandler {
	return &WidgetHandler{
		widgetService: widgetService,
		scheduler:     scheduler,
	}
}

// TestEndpointRequest is the payload for POST /widgets/test
type TestEndpointRequest struct {
	APIURL     string            `json:"api_url" binding:"required"`
	APIHeaders map[string]string `json:"api_headers,omitempty"`
	WithRetry  bool              `json:"with_retry,omitempty"`
}

// ListWidgets handles GET /widgets
func (h *WidgetHandler) ListWidgets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be positive"})
		return
	}
	if pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be positive"})
		return
	}

	widgets, err := h.widgetService.ListWidgets(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve widgets", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, widgets)
}

// GetWidget handles GET /widgets/{id}
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	id, ok := h.widgetID(c)
	if !ok {
		return
	}

	widget, err := h.widgetService.GetWidget(id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Widget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve widget", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, widget)
}

// CreateWidget handles POST /widgets
func (h *WidgetHandler) CreateWidget(c *gin.Context) {
	var req service.CreateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	widget, err := h.widgetService.CreateWidget(&req)
	if err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create widget", "details": err.Error()})
		return
	}

	h.scheduleRefresh(widget)
	c.JSON(http.StatusCreated, widget)
}

// UpdateWidget handles PUT /widgets/{id}
func (h *WidgetHandler) UpdateWidget(c *gin.Context) {
	id, ok := h.widgetID(c)
	if !ok {
		return
	}

	var req service.UpdateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	widget, err := h.widgetService.UpdateWidget(id, &req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Widget not found"})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update widget", "details": err.Error()})
		return
	}

	h.scheduleRefresh(widget)
	c.JSON(http.StatusOK, widget)
}

// DeleteWidget handles DELETE /widgets/{id}
func (h *WidgetHandler) DeleteWidget(c *gin.Context) {
	id, ok := h.widgetID(c)
	if !ok {
		return
	}

	if err := h.widgetService.DeleteWidget(id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Widget not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete widget", "details": err.Error()})
		return
	}

	if h.scheduler != nil {
		h.scheduler.Stop(id)
	}
	c.JSON(http.StatusNoContent, nil)
}

// GetWidgetData handles GET /widgets/{id}/data. ?refresh=true bypasses the
// response cache and re-fetches from the upstream API.
func (h *WidgetHandler) GetWidgetData(c *gin.Context) {
	id, ok := h.widgetID(c)
	if !ok {
		return
	}

	refresh := c.DefaultQuery("refresh", "false") == "true"

	data, err := h.widgetService.FetchForWidget(c.Request.Context(), id, refresh)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Widget not found"})
			return
		}
		writeFetchError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

// TestEndpoint handles POST /widgets/test. It probes an endpoint before a
// widget is saved and reports the inferred fields or a classified failure.
func (h *WidgetHandler) TestEndpoint(c *gin.Context) {
	var req TestEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.widgetService.TestEndpoint(c.Request.Context(), req.APIURL, req.APIHeaders, req.WithRetry)

	// The probe outcome is the payload; transport failures are still a 200
	c.JSON(http.StatusOK, result)
}

func (h *WidgetHandler) scheduleRefresh(widget *service.WidgetResponse) {
	if h.scheduler == nil {
		return
	}
	h.scheduler.Start(widget.ID, time.Duration(widget.RefreshIntervalSeconds)*time.Second)
}

func (h *WidgetHandler) widgetID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid widget ID"})
		return uuid.Nil, false
	}
	return id, true
}
