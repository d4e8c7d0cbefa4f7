package repository

import (
	"widget-dashboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WidgetRepository handles database operations for widgets
type WidgetRepository struct {
	db *gorm.DB
}

// NewWidgetRepository creates a new widget repository
func NewWidgetRepository(db *gorm.DB) *WidgetRepository {
	return &WidgetRepository{db: db}
}

// Create creates a new widget
func (r *WidgetRepository) Create(widget *models.Widget) error {
	return r.db.Create(widget).Error
}

// GetByID retrieves a widget by ID
func (r *WidgetRepository) GetByID(id uuid.UUID) (*models.Widget, error) {
	var widget models.Widget
	err := r.db.First(&widget, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &widget, nil
}

// GetAll retrieves all widgets ordered by dashboard position, with pagination
func (r *WidgetRepository) GetAll(limit, offset int) ([]models.Widget, int64, error) {
	var widgets []models.Widget
	var total int64

	if err := r.db.Model(&models.Widget{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Model(&models.Widget{}).
		Order("position ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&widgets).Error; err != nil {
		return nil, 0, err
	}

	return widgets, total, nil
}

// Update updates an existing widget
func (r *WidgetRepository) Update(widget *models.Widget) error {
	return r.db.Save(widget).Error
}

// Delete removes a widget by ID
func (r *WidgetRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Widget{}, "id = ?", id).Error
}
