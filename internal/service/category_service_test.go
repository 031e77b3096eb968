package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
)

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	if args.Error(0) == nil {
		category.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCategoryService_Create_TrimsName(t *testing.T) {
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Category")).Return(nil)

	category, err := svc.Create(ctx, "  Игры  ")

	assert.NoError(t, err)
	assert.Equal(t, "Игры", category.Name)
}

func TestCategoryService_Create_EmptyName(t *testing.T) {
	svc := NewCategoryService(new(mockCategoryRepo))

	_, err := svc.Create(context.Background(), "   ")
	assert.True(t, apperror.IsValidation(err))
}

func TestCategoryService_Create_Duplicate(t *testing.T) {
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Category")).Return(repository.ErrCategoryExists)

	_, err := svc.Create(ctx, "Игры")
	assert.True(t, apperror.IsConflict(err))
}

func TestCategoryService_List_NeverNil(t *testing.T) {
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo)
	ctx := context.Background()

	repo.On("List", ctx).Return([]models.Category{}, nil)

	categories, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, categories)
}

func TestCategoryService_Delete_NotFound(t *testing.T) {
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("Delete", ctx, id).Return(repository.ErrCategoryNotFound)

	err := svc.Delete(ctx, id)
	assert.ErrorIs(t, err, apperror.ErrCategoryNotFound)
}
