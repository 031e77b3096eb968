package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
	"github.com/apkmarket/backend/internal/validation"
)

// CategoryRepo — хранилище категорий каталога.
type CategoryRepo interface {
	Create(ctx context.Context, category *models.Category) error
	List(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryService управляет справочником категорий.
type CategoryService struct {
	repo CategoryRepo
}

func NewCategoryService(repo CategoryRepo) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create добавляет новую категорию. Имя должно быть непустым и уникальным.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateNonEmpty("название категории", name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	category := &models.Category{Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "категория уже существует")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать категорию")
	}
	return category, nil
}

// List возвращает все категории.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить категории")
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// Delete удаляет категорию по идентификатору.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrCategoryNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить категорию")
	}
	return nil
}
