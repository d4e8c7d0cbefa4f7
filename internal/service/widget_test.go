package service

import (
	"testing"
	"time"

	"widget-dashboard-backend/internal/apiclient"
	"widget-dashboard-backend/internal/cache"
	"widget-dashboard-backend/internal/database/models"
	apperrors "widget-dashboard-backend/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockWidgetRepository is a mock implementation of WidgetRepositoryInterface
type MockWidgetRepository struct {
	mock.Mock
}

func (m *MockWidgetRepository) Create(widget *models.Widget) error {
	args := m.Called(widget)
	return args.Error(0)
}

func (m *MockWidgetRepository) GetByID(id uuid.UUID) (*models.Widget, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Widget), args.Error(1)
}

func (m *MockWidgetRepository) GetAll(limit, offset int) ([]models.Widget, int64, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]models.Widget), args.Get(1).(int64), args.Error(2)
}

func (m *MockWidgetRepository) Update(widget *models.Widget) error {
	args := m.Called(widget)
	return args.Error(0)
}

func (m *MockWidgetRepository) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

// newServiceWithRepo builds a service around a mock repository with real
// cache and transport components (no background sweeps in tests)
func newServiceWithRepo(repo *MockWidgetRepository) *WidgetService {
	responseCache := cache.NewResponseCache(cache.Config{DefaultTTL: time.Minute, MaxSize: 50})
	lookupStore := cache.NewInMemoryCache(time.Minute, 0)
	return NewWidgetService(
		repo,
		validator.New(),
		apiclient.NewClient(2*time.Second),
		apiclient.NewExecutor(apiclient.DefaultRetryPolicy()),
		responseCache,
		lookupStore,
		cache.DefaultTTLConfig(),
	)
}

func testWidget(id uuid.UUID) *models.Widget {
	return &models.Widget{
		BaseModel:              models.BaseModel{ID: id},
		Title:                  "Exchange rates",
		APIURL:                 "https://api.example.com/rates",
		RefreshIntervalSeconds: 60,
		CacheTTLSeconds:        300,
		DisplayMode:            models.DisplayModeCard,
	}
}

func TestWidgetService_CreateWidget(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	repo.On("Create", mock.AnythingOfType("*models.Widget")).Return(nil)

	resp, err := svc.CreateWidget(&CreateWidgetRequest{
		Title:  "Exchange rates",
		APIURL: "https://api.example.com/rates",
	})

	require.NoError(t, err)
	assert.Equal(t, "Exchange rates", resp.Title)
	assert.Equal(t, 60, resp.RefreshIntervalSeconds, "default refresh interval applied")
	assert.Equal(t, 300, resp.CacheTTLSeconds, "default TTL applied")
	assert.Equal(t, models.DisplayModeCard, resp.DisplayMode)
	repo.AssertExpectations(t)
}

func TestWidgetService_CreateWidget_ValidationFails(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	_, err := svc.CreateWidget(&CreateWidgetRequest{Title: "", APIURL: "not a url"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestWidgetService_CreateWidget_DuplicateTitle(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	repo.On("Create", mock.AnythingOfType("*models.Widget")).Return(gorm.ErrDuplicatedKey)

	_, err := svc.CreateWidget(&CreateWidgetRequest{
		Title:  "Exchange rates",
		APIURL: "https://api.example.com/rates",
	})

	assert.ErrorIs(t, err, apperrors.ErrWidgetExists)
	assert.True(t, apperrors.IsAlreadyExists(err))
}

func TestWidgetService_UpdateWidget_DuplicateTitle(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(testWidget(id), nil)
	repo.On("Update", mock.AnythingOfType("*models.Widget")).Return(gorm.ErrDuplicatedKey)

	_, err := svc.UpdateWidget(id, &UpdateWidgetRequest{
		Title:  "Taken title",
		APIURL: "https://api.example.com/rates",
	})

	assert.ErrorIs(t, err, apperrors.ErrWidgetExists)
}

func TestWidgetService_GetWidget_CachedAfterFirstLookup(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(testWidget(id), nil).Once()

	first, err := svc.GetWidget(id)
	require.NoError(t, err)

	second, err := svc.GetWidget(id)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	repo.AssertExpectations(t)
}

func TestWidgetService_GetWidget_NotFound(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetWidget(id)

	require.Error(t, err)
	assert.ErrorContains(t, err, apperrors.ErrWidgetNotFound.Error())
}

func TestWidgetService_ListWidgets(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetAll", 20, 0).Return([]models.Widget{*testWidget(id)}, int64(1), nil).Once()

	list, err := svc.ListWidgets(1, 20)
	require.NoError(t, err)
	assert.Len(t, list.Widgets, 1)
	assert.Equal(t, int64(1), list.Total)

	// Second call is served from the lookup cache
	cached, err := svc.ListWidgets(1, 20)
	require.NoError(t, err)
	assert.Equal(t, list.Total, cached.Total)
	repo.AssertExpectations(t)
}

func TestWidgetService_ListWidgets_NormalizesPagination(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	repo.On("GetAll", 20, 0).Return([]models.Widget{}, int64(0), nil).Once()

	list, err := svc.ListWidgets(-3, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
}

func TestWidgetService_UpdateWidget(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(testWidget(id), nil)
	repo.On("Update", mock.AnythingOfType("*models.Widget")).Return(nil)

	resp, err := svc.UpdateWidget(id, &UpdateWidgetRequest{
		Title:       "Renamed",
		APIURL:      "https://api.example.com/v2/rates",
		DisplayMode: models.DisplayModeTable,
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Title)
	assert.Equal(t, "https://api.example.com/v2/rates", resp.APIURL)
	assert.Equal(t, models.DisplayModeTable, resp.DisplayMode)
	repo.AssertExpectations(t)
}

func TestWidgetService_UpdateWidget_NotFound(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.UpdateWidget(id, &UpdateWidgetRequest{
		Title:  "Renamed",
		APIURL: "https://api.example.com/rates",
	})

	assert.ErrorIs(t, err, apperrors.ErrWidgetNotFound)
}

func TestWidgetService_DeleteWidget(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(testWidget(id), nil)
	repo.On("Delete", id).Return(nil)

	err := svc.DeleteWidget(id)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestWidgetService_DeleteWidget_NotFound(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	id := uuid.New()
	repo.On("GetByID", id).Return(nil, gorm.ErrRecordNotFound)

	err := svc.DeleteWidget(id)

	assert.ErrorIs(t, err, apperrors.ErrWidgetNotFound)
}

func TestWidgetService_MutationsInvalidateLookupCache(t *testing.T) {
	repo := new(MockWidgetRepository)
	svc := newServiceWithRepo(repo)

	repo.On("GetAll", 20, 0).Return([]models.Widget{}, int64(0), nil).Twice()
	repo.On("Create", mock.AnythingOfType("*models.Widget")).Return(nil)

	_, err := svc.ListWidgets(1, 20)
	require.NoError(t, err)

	_, err = svc.CreateWidget(&CreateWidgetRequest{
		Title:  "New widget",
		APIURL: "https://api.example.com/data",
	})
	require.NoError(t, err)

	// The list must be re-fetched after the create
	_, err = svc.ListWidgets(1, 20)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
