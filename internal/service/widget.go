package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"widget-dashboard-backend/internal/apiclient"
	"widget-dashboard-backend/internal/cache"
	"widget-dashboard-backend/internal/database/models"
	apperrors "widget-dashboard-backend/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WidgetRepositoryInterface defines the repository operations the service needs
type WidgetRepositoryInterface interface {
	Create(widget *models.Widget) error
	GetByID(id uuid.UUID) (*models.Widget, error)
	GetAll(limit, offset int) ([]models.Widget, int64, error)
	Update(widget *models.Widget) error
	Delete(id uuid.UUID) error
}

// APIGetter is the transport the service fetches widget data through
type APIGetter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*apiclient.Response, error)
}

// WidgetServiceInterface defines the operations exposed to the HTTP layer
type WidgetServiceInterface interface {
	CreateWidget(req *CreateWidgetRequest) (*WidgetResponse, error)
	GetWidget(id uuid.UUID) (*WidgetResponse, error)
	ListWidgets(page, pageSize int) (*WidgetListResponse, error)
	UpdateWidget(id uuid.UUID, req *UpdateWidgetRequest) (*WidgetResponse, error)
	DeleteWidget(id uuid.UUID) error
	FetchWidgetData(ctx context.Context, url string, headers map[string]string, opts FetchOptions) (json.RawMessage, error)
	FetchForWidget(ctx context.Context, id uuid.UUID, refresh bool) (json.RawMessage, error)
	TestEndpoint(ctx context.Context, url string, headers map[string]string, withRetry bool) *TestEndpointResult
}

// WidgetService handles business logic for widgets and their data
type WidgetService struct {
	repo      WidgetRepositoryInterface
	validator *validator.Validate

	client   APIGetter
	executor *apiclient.Executor

	// responseCache holds API payloads; lookupCache holds widget lookups.
	// The lookup store is dedicated to this service, so mutations may clear
	// it wholesale.
	responseCache *cache.ResponseCache
	lookupStore   cache.CacheService
	lookup        *cache.CacheWrapper
	ttl           cache.TTLConfig
}

// NewWidgetService creates a new widget service
func NewWidgetService(
	repo WidgetRepositoryInterface,
	validator *validator.Validate,
	client APIGetter,
	executor *apiclient.Executor,
	responseCache *cache.ResponseCache,
	lookupStore cache.CacheService,
	ttl cache.TTLConfig,
) *WidgetService {
	return &WidgetService{
		repo:          repo,
		validator:     validator,
		client:        client,
		executor:      executor,
		responseCache: responseCache,
		lookupStore:   lookupStore,
		lookup:        cache.NewCacheWrapper(lookupStore, ttl.Default),
		ttl:           ttl,
	}
}

// CreateWidgetRequest represents the request to create a widget
type CreateWidgetRequest struct {
	Title                  string          `json:"title" validate:"required,min=1,max=100"`
	APIURL                 string          `json:"api_url" validate:"required,url,max=500"`
	APIHeaders             json.RawMessage `json:"api_headers,omitempty"`
	RefreshIntervalSeconds int             `json:"refresh_interval_seconds" validate:"omitempty,min=5,max=86400"`
	CacheTTLSeconds        int             `json:"cache_ttl_seconds" validate:"omitempty,min=0,max=86400"`
	DisplayMode            string          `json:"display_mode" validate:"omitempty,oneof=card table chart"`
	FieldMappings          json.RawMessage `json:"field_mappings,omitempty"`
	Position               int             `json:"position"`
}

// UpdateWidgetRequest represents the request to update a widget
type UpdateWidgetRequest struct {
	Title                  string          `json:"title" validate:"required,min=1,max=100"`
	APIURL                 string          `json:"api_url" validate:"required,url,max=500"`
	APIHeaders             json.RawMessage `json:"api_headers,omitempty"`
	RefreshIntervalSeconds int             `json:"refresh_interval_seconds" validate:"omitempty,min=5,max=86400"`
	CacheTTLSeconds        int             `json:"cache_ttl_seconds" validate:"omitempty,min=0,max=86400"`
	DisplayMode            string          `json:"display_mode" validate:"omitempty,oneof=card table chart"`
	FieldMappings          json.RawMessage `json:"field_mappings,omitempty"`
	Position               int             `json:"position"`
}

// WidgetResponse represents the response for widget operations
type WidgetResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Title                  string          `json:"title"`
	APIURL                 string          `json:"api_url"`
	APIHeaders             json.RawMessage `json:"api_headers,omitempty"`
	RefreshIntervalSeconds int             `json:"refresh_interval_seconds"`
	CacheTTLSeconds        int             `json:"cache_ttl_seconds"`
	DisplayMode            string          `json:"display_mode"`
	FieldMappings          json.RawMessage `json:"field_mappings,omitempty"`
	Position               int             `json:"position"`
	CreatedAt              string          `json:"created_at"`
	UpdatedAt              string          `json:"updated_at"`
}

// WidgetListResponse represents a paginated list of widgets
type WidgetListResponse struct {
	Widgets  []WidgetResponse `json:"widgets"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// CreateWidget creates a new widget
func (s *WidgetService) CreateWidget(req *CreateWidgetRequest) (*WidgetResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	widget := &models.Widget{
		Title:                  req.Title,
		APIURL:                 req.APIURL,
		APIHeaders:             req.APIHeaders,
		RefreshIntervalSeconds: req.RefreshIntervalSeconds,
		CacheTTLSeconds:        req.CacheTTLSeconds,
		DisplayMode:            req.DisplayMode,
		FieldMappings:          req.FieldMappings,
		Position:               req.Position,
	}
	if widget.RefreshIntervalSeconds == 0 {
		widget.RefreshIntervalSeconds = 60
	}
	if widget.CacheTTLSeconds == 0 {
		widget.CacheTTLSeconds = int(s.ttl.WidgetData / time.Second)
	}
	if widget.DisplayMode == "" {
		widget.DisplayMode = models.DisplayModeCard
	}

	if err := s.repo.Create(widget); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrWidgetExists
		}
		return nil, fmt.Errorf("failed to create widget: %w", err)
	}

	s.invalidateLookups()
	return s.toResponse(widget), nil
}

// GetWidget retrieves a widget by ID
func (s *WidgetService) GetWidget(id uuid.UUID) (*WidgetResponse, error) {
	widget, err := s.getWidgetModel(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(widget), nil
}

// ListWidgets retrieves widgets with pagination
func (s *WidgetService) ListWidgets(page, pageSize int) (*WidgetListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var result WidgetListResponse
	err := s.lookup.GetOrSetTyped(cache.WidgetListKey(pageSize, offset), s.ttl.WidgetList, &result, func() (interface{}, error) {
		widgets, total, err := s.repo.GetAll(pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list widgets: %w", err)
		}

		responses := make([]WidgetResponse, len(widgets))
		for i, widget := range widgets {
			responses[i] = *s.toResponse(&widget)
		}

		return &WidgetListResponse{
			Widgets:  responses,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateWidget updates an existing widget
func (s *WidgetService) UpdateWidget(id uuid.UUID, req *UpdateWidgetRequest) (*WidgetResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	widget, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWidgetNotFound
		}
		return nil, fmt.Errorf("failed to get widget: %w", err)
	}

	// The polled endpoint may have changed; drop the old payload
	s.responseCache.Invalidate(widget.APIURL, widget.Headers())

	widget.Title = req.Title
	widget.APIURL = req.APIURL
	widget.APIHeaders = req.APIHeaders
	widget.DisplayMode = req.DisplayMode
	widget.FieldMappings = req.FieldMappings
	widget.Position = req.Position
	if req.RefreshIntervalSeconds > 0 {
		widget.RefreshIntervalSeconds = req.RefreshIntervalSeconds
	}
	if req.CacheTTLSeconds > 0 {
		widget.CacheTTLSeconds = req.CacheTTLSeconds
	}
	if widget.DisplayMode == "" {
		widget.DisplayMode = models.DisplayModeCard
	}

	if err := s.repo.Update(widget); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrWidgetExists
		}
		return nil, fmt.Errorf("failed to update widget: %w", err)
	}

	s.invalidateLookups()
	return s.toResponse(widget), nil
}

// DeleteWidget removes a widget
func (s *WidgetService) DeleteWidget(id uuid.UUID) error {
	widget, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrWidgetNotFound
		}
		return fmt.Errorf("failed to get widget: %w", err)
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete widget: %w", err)
	}

	s.responseCache.Invalidate(widget.APIURL, widget.Headers())
	s.invalidateLookups()
	return nil
}

// getWidgetModel loads a widget through the lookup cache
func (s *WidgetService) getWidgetModel(id uuid.UUID) (*models.Widget, error) {
	var widget models.Widget
	err := s.lookup.GetOrSetTyped(cache.WidgetKey(id.String()), s.ttl.WidgetByID, &widget, func() (interface{}, error) {
		w, err := s.repo.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrWidgetNotFound
			}
			return nil, fmt.Errorf("failed to get widget: %w", err)
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return &widget, nil
}

// invalidateLookups drops all cached widget lookups. The store holds nothing
// else, so clearing it wholesale is correct.
func (s *WidgetService) invalidateLookups() {
	_ = s.lookupStore.Clear()
}

func (s *WidgetService) toResponse(widget *models.Widget) *WidgetResponse {
	return &WidgetResponse{
		ID:                     widget.ID,
		Title:                  widget.Title,
		APIURL:                 widget.APIURL,
		APIHeaders:             widget.APIHeaders,
		RefreshIntervalSeconds: widget.RefreshIntervalSeconds,
		CacheTTLSeconds:        widget.CacheTTLSeconds,
		DisplayMode:            widget.DisplayMode,
		FieldMappings:          widget.FieldMappings,
		Position:               widget.Position,
		CreatedAt:              widget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              widget.UpdatedAt.Format(time.RFC3339),
	}
}
