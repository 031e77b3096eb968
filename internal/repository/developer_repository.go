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

var ErrDeveloperNotFound = errors.New("developer not found")

type DeveloperRepository struct {
	db *sqlx.DB
}

func NewDeveloperRepository(db *sqlx.DB) *DeveloperRepository {
	return &DeveloperRepository{db: db}
}

// Create регистрирует разработчика в статусе pending.
func (r *DeveloperRepository) Create(ctx context.Context, dev *models.Developer) error {
	query := `
		INSERT INTO developers (email, name, company_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, dev.Email, dev.Name, dev.CompanyName, dev.PasswordHash).
		Scan(&dev.ID, &dev.Status, &dev.CreatedAt, &dev.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("developer repository: create %w", err)
	}
	return nil
}

// GetByEmail ищет разработчика по email без учёта регистра.
func (r *DeveloperRepository) GetByEmail(ctx context.Context, email string) (*models.Developer, error) {
	var dev models.Developer
	err := r.db.GetContext(ctx, &dev, `SELECT * FROM developers WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("developer repository: get by email %w", err)
	}
	return &dev, nil
}

// GetByID возвращает разработчика по ID.
func (r *DeveloperRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Developer, error) {
	var dev models.Developer
	err := r.db.GetContext(ctx, &dev, `SELECT * FROM developers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("developer repository: get by id %w", err)
	}
	return &dev, nil
}

// UpdateStatus переводит аккаунт разработчика в новый статус.
func (r *DeveloperRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE developers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("developer repository: update status %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("developer repository: update status %w", err)
	}
	if affected == 0 {
		return ErrDeveloperNotFound
	}
	return nil
}

// List возвращает всех разработчиков (для админ-панели).
func (r *DeveloperRepository) List(ctx context.Context) ([]models.Developer, error) {
	var devs []models.Developer
	if err := r.db.SelectContext(ctx, &devs, `SELECT * FROM developers ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("developer repository: list %w", err)
	}
	return devs, nil
}
