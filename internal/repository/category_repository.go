package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/apkmarket/backend/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create добавляет рубрику каталога.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`, category.Name).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrCategoryExists
		}
		return fmt.Errorf("category repository: create %w", err)
	}
	return nil
}

// List возвращает все рубрики по алфавиту.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}
	return categories, nil
}

// ExistsByName проверяет наличие рубрики с заданным именем.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories WHERE name = $1`, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("category repository: exists by name %w", err)
	}
	return count > 0, nil
}

// Delete удаляет рубрику.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("category repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("category repository: delete %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
