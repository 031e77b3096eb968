package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) CreateSynthetic(ctx context.Context, review *models.Review, createdAt *time.Time) error {
	args := m.Called(ctx, review, createdAt)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetByApplicationAndUser(ctx context.Context, applicationID, userID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, applicationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByApplication(ctx context.Context, applicationID uuid.UUID, limit int) ([]models.ReviewWithAuthor, error) {
	args := m.Called(ctx, applicationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewWithAuthor), args.Error(1)
}

func (m *mockReviewRepo) GetAverageRating(ctx context.Context, applicationID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) GetDistribution(ctx context.Context, applicationID uuid.UUID) (map[int]int, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *mockReviewRepo) AddHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error) {
	args := m.Called(ctx, reviewID, voterID)
	return args.Int(0), args.Error(1)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAppRepoForReviews struct {
	mock.Mock
}

func (m *mockAppRepoForReviews) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func existingApp(id uuid.UUID) *models.Application {
	return &models.Application{ID: id, Status: models.AppStatusActive}
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	userID := uuid.New()

	appRepo.On("GetByID", ctx, appID).Return(existingApp(appID), nil)
	reviewRepo.On("GetByApplicationAndUser", ctx, appID, userID).Return(nil, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	comment := "Отличное приложение!"
	review, err := svc.CreateReview(ctx, appID, userID, 5, &comment)

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, userID, *review.UserID)
	assert.False(t, review.IsAdmin)
	assert.Equal(t, 0, review.HelpfulCount)
}

func TestReviewService_CreateReview_InvalidRating(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, uuid.New(), uuid.New(), 0, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.CreateReview(ctx, uuid.New(), uuid.New(), 6, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_CreateReview_MalformedIDs(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, uuid.Nil, uuid.New(), 4, nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.CreateReview(ctx, uuid.New(), uuid.Nil, 4, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	userID := uuid.New()

	appRepo.On("GetByID", ctx, appID).Return(existingApp(appID), nil)
	reviewRepo.On("GetByApplicationAndUser", ctx, appID, userID).
		Return(&models.Review{ID: uuid.New(), ApplicationID: appID, UserID: &userID, Rating: 4}, nil)

	_, err := svc.CreateReview(ctx, appID, userID, 2, nil)

	assert.ErrorIs(t, err, apperror.ErrDuplicateReview)
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_CreateReview_DuplicateUnderRace(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	userID := uuid.New()

	// Предварительная проверка ничего не нашла, но вставка упёрлась
	// в уникальный индекс: гонку выиграл другой запрос.
	appRepo.On("GetByID", ctx, appID).Return(existingApp(appID), nil)
	reviewRepo.On("GetByApplicationAndUser", ctx, appID, userID).Return(nil, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(repository.ErrDuplicateReview)

	_, err := svc.CreateReview(ctx, appID, userID, 5, nil)

	assert.ErrorIs(t, err, apperror.ErrDuplicateReview)
}

func TestReviewService_CreateReview_ApplicationNotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	appRepo.On("GetByID", ctx, appID).Return(nil, repository.ErrApplicationNotFound)

	_, err := svc.CreateReview(ctx, appID, uuid.New(), 3, nil)

	assert.ErrorIs(t, err, apperror.ErrApplicationNotFound)
}

func TestReviewService_CreateReview_CommentSanitized(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	userID := uuid.New()

	appRepo.On("GetByID", ctx, appID).Return(existingApp(appID), nil)
	reviewRepo.On("GetByApplicationAndUser", ctx, appID, userID).Return(nil, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	comment := `<script>alert("x")</script>Полезно`
	review, err := svc.CreateReview(ctx, appID, userID, 4, &comment)

	assert.NoError(t, err)
	assert.NotNil(t, review.Comment)
	assert.Equal(t, "Полезно", *review.Comment)
}

func TestReviewService_CreateSyntheticReview_NoDuplicateCheck(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	appRepo.On("GetByID", ctx, appID).Return(existingApp(appID), nil)
	reviewRepo.On("CreateSynthetic", ctx, mock.AnythingOfType("*models.Review"), (*time.Time)(nil)).Return(nil)

	// Два отзыва с одинаковым именем — оба проходят.
	first, err := svc.CreateSyntheticReview(ctx, appID, "Иван", 5, nil, nil)
	assert.NoError(t, err)
	second, err := svc.CreateSyntheticReview(ctx, appID, "Иван", 5, nil, nil)
	assert.NoError(t, err)

	assert.True(t, first.IsAdmin)
	assert.True(t, second.IsAdmin)
	assert.Nil(t, first.UserID)
	assert.Equal(t, "Иван", *first.DisplayName)
	reviewRepo.AssertNotCalled(t, "GetByApplicationAndUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_CreateSyntheticReview_Backdated(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	appRepo := new(mockAppRepoForReviews)
	svc := NewReviewService(reviewRepo, appRepo, nil)
	ctx := context.Background()

	appID := uuid.New()
	createdAt := time.Date(2023, 3, 14, 12, 0, 0, 0, time.UTC)

	appRepo.On("GetByID", ctx, appID).Return(existingApp(appID), nil)
	reviewRepo.On("CreateSynthetic", ctx, mock.AnythingOfType("*models.Review"), &createdAt).Return(nil)

	_, err := svc.CreateSyntheticReview(ctx, appID, "Мария", 4, nil, &createdAt)

	assert.NoError(t, err)
	reviewRepo.AssertExpectations(t)
}

func TestReviewService_CreateSyntheticReview_EmptyDisplayName(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockAppRepoForReviews), nil)

	_, err := svc.CreateSyntheticReview(context.Background(), uuid.New(), "  ", 4, nil, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_CastHelpfulVote_FirstThenRepeat(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	reviewID := uuid.New()
	voterID := uuid.New()

	reviewRepo.On("AddHelpfulVote", ctx, reviewID, voterID).Return(1, nil).Once()
	reviewRepo.On("AddHelpfulVote", ctx, reviewID, voterID).Return(1, repository.ErrAlreadyVoted).Once()

	helpful, err := svc.CastHelpfulVote(ctx, reviewID, voterID)
	assert.NoError(t, err)
	assert.Equal(t, 1, helpful)

	helpful, err = svc.CastHelpfulVote(ctx, reviewID, voterID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyVoted)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, 1, helpful)
}

func TestReviewService_CastHelpfulVote_NotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	reviewID := uuid.New()
	voterID := uuid.New()
	reviewRepo.On("AddHelpfulVote", ctx, reviewID, voterID).Return(0, repository.ErrReviewNotFound)

	_, err := svc.CastHelpfulVote(ctx, reviewID, voterID)
	assert.ErrorIs(t, err, apperror.ErrReviewNotFound)
}

func TestReviewService_CastHelpfulVote_NilVoter(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockAppRepoForReviews), nil)

	_, err := svc.CastHelpfulVote(context.Background(), uuid.New(), uuid.Nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_GetApplicationReviews_Empty(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	appID := uuid.New()
	reviewRepo.On("ListByApplication", ctx, appID, DefaultReviewPageSize).Return([]models.ReviewWithAuthor{}, nil)
	reviewRepo.On("GetAverageRating", ctx, appID).Return(0.0, 0, nil)
	reviewRepo.On("GetDistribution", ctx, appID).Return(map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, nil)

	listing, err := svc.GetApplicationReviews(ctx, appID, 0)

	assert.NoError(t, err)
	assert.Empty(t, listing.Reviews)
	assert.NotNil(t, listing.Reviews)
	assert.Equal(t, 0.0, listing.Average)
	assert.Equal(t, 0, listing.Total)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, listing.Distribution)
}

func TestReviewService_GetApplicationReviews_AverageRounding(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	appID := uuid.New()
	reviews := []models.ReviewWithAuthor{
		{Review: models.Review{ID: uuid.New(), Rating: 5}},
		{Review: models.Review{ID: uuid.New(), Rating: 4}},
		{Review: models.Review{ID: uuid.New(), Rating: 4}},
	}

	reviewRepo.On("ListByApplication", ctx, appID, DefaultReviewPageSize).Return(reviews, nil)
	reviewRepo.On("GetAverageRating", ctx, appID).Return(4.333333333, 3, nil)
	reviewRepo.On("GetDistribution", ctx, appID).Return(map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, nil)

	listing, err := svc.GetApplicationReviews(ctx, appID, 10)

	assert.NoError(t, err)
	assert.Equal(t, 4.3, listing.Average)
	assert.Equal(t, 3, listing.Total)

	sum := 0
	for _, n := range listing.Distribution {
		sum += n
	}
	assert.Equal(t, listing.Total, sum)
}

func TestReviewService_UpdateReview_PartialFields(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	reviewID := uuid.New()
	oldComment := "старый комментарий"
	stored := &models.Review{ID: reviewID, Rating: 2, Comment: &oldComment}

	reviewRepo.On("GetByID", ctx, reviewID).Return(stored, nil)
	reviewRepo.On("Update", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	newRating := 5
	review, err := svc.UpdateReview(ctx, reviewID, &newRating, nil)

	assert.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "старый комментарий", *review.Comment)
}

func TestReviewService_UpdateReview_NotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	reviewID := uuid.New()
	reviewRepo.On("GetByID", ctx, reviewID).Return(nil, repository.ErrReviewNotFound)

	_, err := svc.UpdateReview(ctx, reviewID, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrReviewNotFound)
}

func TestReviewService_DeleteReview_NotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockAppRepoForReviews), nil)
	ctx := context.Background()

	reviewID := uuid.New()
	reviewRepo.On("Delete", ctx, reviewID).Return(repository.ErrReviewNotFound)

	err := svc.DeleteReview(ctx, reviewID)
	assert.ErrorIs(t, err, apperror.ErrReviewNotFound)
}
