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
	ErrApplicationNotFound = errors.New("application not found")
	ErrApkIDTaken          = errors.New("apk id already taken")
)

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create сохраняет загруженное приложение. Столкновение человекочитаемых
// идентификаторов возвращается как ErrApkIDTaken, чтобы сервис мог
// сгенерировать новый суффикс и повторить вставку.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (
			apk_id, developer_id, title, description, category, platform,
			package_path, icon_path, screenshots, tags,
			contains_ads, gambling, collects_data, for_children, government, banking,
			declarations
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		app.ApkID, app.DeveloperID, app.Title, app.Description, app.Category, app.Platform,
		app.PackagePath, app.IconPath, app.Screenshots, app.Tags,
		app.ContainsAds, app.Gambling, app.CollectsData, app.ForChildren, app.Government, app.Banking,
		app.Declarations,
	).Scan(&app.ID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrApkIDTaken
		}
		return fmt.Errorf("application repository: create %w", err)
	}
	return nil
}

// GetByID возвращает приложение по первичному ключу.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by id %w", err)
	}
	return &app, nil
}

// GetByApkID возвращает приложение по человекочитаемому идентификатору.
func (r *ApplicationRepository) GetByApkID(ctx context.Context, apkID string) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE apk_id = $1`, apkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by apk id %w", err)
	}
	return &app, nil
}

// List возвращает страницу приложений в заданном статусе с опциональным
// фильтром по категории и поиском по названию/тегам.
func (r *ApplicationRepository) List(ctx context.Context, status, category, search string, limit, offset int) ([]models.Application, error) {
	query := `SELECT * FROM applications WHERE status = $1`
	args := []interface{}{status}

	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d))", len(args), len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("application repository: list %w", err)
	}
	return apps, nil
}

// ListByDeveloper возвращает приложения разработчика, включая неопубликованные.
func (r *ApplicationRepository) ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.SelectContext(ctx, &apps,
		`SELECT * FROM applications WHERE developer_id = $1 ORDER BY created_at DESC`, developerID)
	if err != nil {
		return nil, fmt.Errorf("application repository: list by developer %w", err)
	}
	return apps, nil
}

// ListByStatus возвращает все приложения в указанном статусе (для админ-панели).
func (r *ApplicationRepository) ListByStatus(ctx context.Context, status string) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.SelectContext(ctx, &apps,
		`SELECT * FROM applications WHERE status = $1 ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("application repository: list by status %w", err)
	}
	return apps, nil
}

// UpdateStatus записывает новый статус и сообщение администратора одним
// обновлением и возвращает свежую запись.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, message *string) (*models.Application, error) {
	var app models.Application
	err := r.db.QueryRowxContext(ctx, `
		UPDATE applications SET status = $2, admin_message = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, status, message).StructScan(&app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: update status %w", err)
	}
	return &app, nil
}

// CountByStatus возвращает количество приложений по каждому статусу.
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("application repository: count by status %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Delete удаляет приложение вместе с отзывами (каскад в схеме).
func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("application repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("application repository: delete %w", err)
	}
	if affected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
