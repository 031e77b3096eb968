package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/apkmarket/backend/internal/models"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrDuplicateReview = errors.New("duplicate review")
	ErrAlreadyVoted    = errors.New("already voted")
)

// uniqueViolation — код ошибки Postgres для нарушения уникального индекса.
const uniqueViolation = "23505"

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create создаёт настоящий отзыв. Частичный уникальный индекс
// (application_id, user_id) WHERE user_id IS NOT NULL атомарно отклоняет
// гонку двух одинаковых вставок; нарушение транслируется в ErrDuplicateReview.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (application_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, helpful_count, is_admin, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.ApplicationID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.HelpfulCount, &review.IsAdmin, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateReview
		}
		return fmt.Errorf("review repository: create %w", err)
	}
	return nil
}

// CreateSynthetic создаёт отзыв от имени администратора. Автор отсутствует,
// поэтому индекс уникальности не действует: дубликаты допустимы намеренно.
// createdAt может быть задан в прошлом для сидирования витрины.
func (r *ReviewRepository) CreateSynthetic(ctx context.Context, review *models.Review, createdAt *time.Time) error {
	ts := time.Now()
	if createdAt != nil {
		ts = *createdAt
	}

	query := `
		INSERT INTO reviews (application_id, display_name, rating, comment, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		RETURNING id, helpful_count, is_admin, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.ApplicationID, review.DisplayName, review.Rating, review.Comment, ts,
	).Scan(&review.ID, &review.HelpfulCount, &review.IsAdmin, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("review repository: create synthetic %w", err)
	}
	return nil
}

// GetByID возвращает отзыв по ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}
	return &review, nil
}

// GetByApplicationAndUser проверяет, оставлял ли пользователь отзыв на приложение.
func (r *ReviewRepository) GetByApplicationAndUser(ctx context.Context, applicationID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review,
		`SELECT * FROM reviews WHERE application_id = $1 AND user_id = $2`, applicationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("review repository: get by application and user %w", err)
	}
	return &review, nil
}

// ListByApplication возвращает свежие отзывы приложения с именем автора:
// для настоящих отзывов — имя пользователя, для синтетических — сохранённое
// отображаемое имя.
func (r *ReviewRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID, limit int) ([]models.ReviewWithAuthor, error) {
	var reviews []models.ReviewWithAuthor
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT r.*, COALESCE(u.name, r.display_name, '') AS author_name
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.application_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2
	`, applicationID, limit)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by application %w", err)
	}
	return reviews, nil
}

// GetAverageRating возвращает средний рейтинг и количество отзывов приложения.
// Агрегация идёт по всем отзывам, а не по выданной странице.
func (r *ReviewRepository) GetAverageRating(ctx context.Context, applicationID uuid.UUID) (float64, int, error) {
	var result struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	err := r.db.GetContext(ctx, &result, `
		SELECT COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count FROM reviews WHERE application_id = $1
	`, applicationID)
	if err != nil {
		return 0, 0, fmt.Errorf("review repository: get average rating %w", err)
	}
	return result.Avg.Float64, result.Count, nil
}

// GetDistribution возвращает гистограмму оценок приложения по значениям 1–5.
// Значения вне диапазона (их не должно быть из-за CHECK) в гистограмму не попадают.
func (r *ReviewRepository) GetDistribution(ctx context.Context, applicationID uuid.UUID) (map[int]int, error) {
	rows := []struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT rating, COUNT(*) AS count FROM reviews WHERE application_id = $1 GROUP BY rating
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("review repository: get distribution %w", err)
	}

	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, row := range rows {
		if row.Rating >= 1 && row.Rating <= 5 {
			distribution[row.Rating] = row.Count
		}
	}
	return distribution, nil
}

// AddHelpfulVote атомарно добавляет голос «полезно»: идентификатор голосующего
// дописывается в voter_ids, счётчик увеличивается тем же обновлением при условии,
// что голоса ещё не было. Отдельного «прочитать, потом записать» здесь нет —
// условие в WHERE закрывает окно гонки.
func (r *ReviewRepository) AddHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error) {
	var helpful int
	err := r.db.QueryRowxContext(ctx, `
		UPDATE reviews
		SET voter_ids = array_append(voter_ids, $2),
		    helpful_count = cardinality(voter_ids) + 1,
		    updated_at = NOW()
		WHERE id = $1 AND NOT (voter_ids @> ARRAY[$2]::uuid[])
		RETURNING helpful_count
	`, reviewID, voterID).Scan(&helpful)
	if err == nil {
		return helpful, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("review repository: add helpful vote %w", err)
	}

	// Обновление не затронуло строк: либо отзыва нет, либо голос уже учтён.
	err = r.db.GetContext(ctx, &helpful, `SELECT helpful_count FROM reviews WHERE id = $1`, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrReviewNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("review repository: add helpful vote %w", err)
	}
	return helpful, ErrAlreadyVoted
}

// Update заменяет оценку и комментарий отзыва.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW() WHERE id = $1
	`, review.ID, review.Rating, review.Comment)
	if err != nil {
		return fmt.Errorf("review repository: update %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("review repository: update %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete удаляет отзыв безвозвратно.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("review repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("review repository: delete %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
