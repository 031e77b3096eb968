package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/apkmarket/backend/internal/logger"
	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
	"github.com/apkmarket/backend/internal/validation"
)

// ReviewRepository описывает зависимости ReviewService от слоя хранилища.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	CreateSynthetic(ctx context.Context, review *models.Review, createdAt *time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	GetByApplicationAndUser(ctx context.Context, applicationID, userID uuid.UUID) (*models.Review, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID, limit int) ([]models.ReviewWithAuthor, error)
	GetAverageRating(ctx context.Context, applicationID uuid.UUID) (float64, int, error)
	GetDistribution(ctx context.Context, applicationID uuid.UUID) (map[int]int, error)
	AddHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApplicationRepoForReviews — проверка существования приложения перед записью отзыва.
type ApplicationRepoForReviews interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
}

// ModerationFeed получает события о новых отзывах (best effort, может быть nil).
type ModerationFeed interface {
	NotifyAdmins(eventType string, data any) error
}

// DefaultReviewPageSize — размер страницы отзывов по умолчанию.
const DefaultReviewPageSize = 10

// ReviewListing — отзывы приложения вместе с агрегированной статистикой.
// Статистика считается по всем отзывам, независимо от размера страницы.
type ReviewListing struct {
	Reviews []models.ReviewWithAuthor `json:"reviews"`
	models.ReviewStats
}

// ReviewService инкапсулирует жизненный цикл отзывов: создание с защитой
// от дубликатов, синтетические отзывы администратора, голоса «полезно»
// и агрегацию оценок.
type ReviewService struct {
	repo   ReviewRepository
	apps   ApplicationRepoForReviews
	feed   ModerationFeed
	policy *bluemonday.Policy
}

// NewReviewService создаёт сервис отзывов. feed может быть nil.
func NewReviewService(repo ReviewRepository, apps ApplicationRepoForReviews, feed ModerationFeed) *ReviewService {
	return &ReviewService{
		repo:   repo,
		apps:   apps,
		feed:   feed,
		policy: bluemonday.StrictPolicy(),
	}
}

// CreateReview создаёт отзыв от имени пользователя. Повторный отзыв того же
// пользователя на то же приложение отклоняется: сначала дружелюбной
// предварительной проверкой, а под гонкой — частичным уникальным индексом
// хранилища.
func (s *ReviewService) CreateReview(ctx context.Context, applicationID, userID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if applicationID == uuid.Nil || userID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор")
	}
	if err := validation.ValidateRating(rating); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	comment, err := s.sanitizeComment(comment)
	if err != nil {
		return nil, err
	}

	if _, err := s.apps.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить приложение")
	}

	existing, err := s.repo.GetByApplicationAndUser(ctx, applicationID, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить наличие отзыва")
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateReview
	}

	review := &models.Review{
		ApplicationID: applicationID,
		UserID:        &userID,
		Rating:        rating,
		Comment:       comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperror.ErrDuplicateReview
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить отзыв")
	}

	s.notify("review.created", review)
	return review, nil
}

// CreateSyntheticReview создаёт отзыв от имени администратора. Проверка
// дубликатов намеренно не выполняется: у отзыва нет автора, и таких отзывов
// может быть сколько угодно. createdAt позволяет датировать отзыв задним числом.
func (s *ReviewService) CreateSyntheticReview(ctx context.Context, applicationID uuid.UUID, displayName string, rating int, comment *string, createdAt *time.Time) (*models.Review, error) {
	if applicationID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор")
	}
	if err := validation.ValidateRating(rating); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	comment, err := s.sanitizeComment(comment)
	if err != nil {
		return nil, err
	}

	if _, err := s.apps.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить приложение")
	}

	displayName = strings.TrimSpace(displayName)
	review := &models.Review{
		ApplicationID: applicationID,
		DisplayName:   &displayName,
		Rating:        rating,
		Comment:       comment,
		IsAdmin:       true,
	}

	if err := s.repo.CreateSynthetic(ctx, review, createdAt); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить отзыв")
	}

	return review, nil
}

// UpdateReview заменяет оценку и/или комментарий существующего отзыва.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID uuid.UUID, rating *int, comment *string) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить отзыв")
	}

	if rating != nil {
		if err := validation.ValidateRating(*rating); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		review.Rating = *rating
	}
	if comment != nil {
		clean, err := s.sanitizeComment(comment)
		if err != nil {
			return nil, err
		}
		review.Comment = clean
	}

	if err := s.repo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить отзыв")
	}

	return review, nil
}

// DeleteReview безвозвратно удаляет отзыв.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID uuid.UUID) error {
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return apperror.ErrReviewNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить отзыв")
	}
	return nil
}

// CastHelpfulVote учитывает голос «полезно». Повторный голос того же
// пользователя отклоняется ошибкой, счётчик при этом не меняется.
func (s *ReviewService) CastHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error) {
	if voterID == uuid.Nil {
		return 0, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор голосующего")
	}

	helpful, err := s.repo.AddHelpfulVote(ctx, reviewID, voterID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			return 0, apperror.ErrReviewNotFound
		case errors.Is(err, repository.ErrAlreadyVoted):
			return helpful, apperror.ErrAlreadyVoted
		}
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось учесть голос")
	}
	return helpful, nil
}

// GetApplicationReviews возвращает свежие отзывы приложения вместе со
// статистикой: среднее округляется до одного знака, гистограмма всегда
// содержит ключи 1–5. Отсутствие отзывов — не ошибка.
func (s *ReviewService) GetApplicationReviews(ctx context.Context, applicationID uuid.UUID, limit int) (*ReviewListing, error) {
	if applicationID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор")
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultReviewPageSize
	}

	reviews, err := s.repo.ListByApplication(ctx, applicationID, limit)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить отзывы")
	}
	if reviews == nil {
		reviews = []models.ReviewWithAuthor{}
	}

	avg, total, err := s.repo.GetAverageRating(ctx, applicationID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать статистику")
	}

	distribution, err := s.repo.GetDistribution(ctx, applicationID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать статистику")
	}

	return &ReviewListing{
		Reviews: reviews,
		ReviewStats: models.ReviewStats{
			Average:      math.Round(avg*10) / 10,
			Total:        total,
			Distribution: distribution,
		},
	}, nil
}

// sanitizeComment валидирует длину и вырезает HTML из комментария.
func (s *ReviewService) sanitizeComment(comment *string) (*string, error) {
	if comment == nil {
		return nil, nil
	}
	if err := validation.ValidateLength("комментарий", *comment, 0, validation.MaxCommentLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	clean := strings.TrimSpace(s.policy.Sanitize(*comment))
	if clean == "" {
		return nil, nil
	}
	return &clean, nil
}

func (s *ReviewService) notify(eventType string, data any) {
	if s.feed == nil {
		return
	}
	if err := s.feed.NotifyAdmins(eventType, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("review service: не удалось отправить событие")
	}
}
