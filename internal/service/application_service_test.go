package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
)

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	args := m.Called(ctx, app)
	if args.Error(0) == nil {
		// Реальный репозиторий заполняет эти поля из RETURNING.
		app.ID = uuid.New()
		app.Status = models.AppStatusPending
	}
	return args.Error(0)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetByApkID(ctx context.Context, apkID string) (*models.Application, error) {
	args := m.Called(ctx, apkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationRepo) List(ctx context.Context, status, category, search string, limit, offset int) ([]models.Application, error) {
	args := m.Called(ctx, status, category, search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockApplicationRepo) ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]models.Application, error) {
	args := m.Called(ctx, developerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockApplicationRepo) ListByStatus(ctx context.Context, status string) ([]models.Application, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, message *string) (*models.Application, error) {
	args := m.Called(ctx, id, status, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockDeveloperRepo struct {
	mock.Mock
}

func (m *mockDeveloperRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Developer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Developer), args.Error(1)
}

type mockCategoryRepoForApps struct {
	mock.Mock
}

func (m *mockCategoryRepoForApps) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type mockStatusMailer struct {
	mock.Mock
}

func (m *mockStatusMailer) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockStatusMailer) Send(to, subject, html string) error {
	args := m.Called(to, subject, html)
	return args.Error(0)
}

// newAppService собирает сервис с синхронным dispatch, чтобы проверять
// побочные эффекты без гонок со временем теста.
func newAppService(repo *mockApplicationRepo, devs *mockDeveloperRepo, cats *mockCategoryRepoForApps, mailer *mockStatusMailer) *ApplicationService {
	var m StatusMailer
	if mailer != nil {
		m = mailer
	}
	svc := NewApplicationService(repo, devs, cats, m, nil)
	svc.dispatch = func(fn func()) { fn() }
	return svc
}

func validUploadInput() CreateApplicationInput {
	return CreateApplicationInput{
		Title:        "Моё приложение",
		Description:  "Описание",
		Category:     "Игры",
		Platform:     models.PlatformAndroid,
		PackagePath:  "/uploads/pkg.apk",
		IconPath:     "/uploads/icon.png",
		Screenshots:  []string{"/uploads/1.png", "/uploads/2.png", "/uploads/3.png", "/uploads/4.png"},
		Tags:         []string{"игры", "аркада", "казуальная", "оффлайн", "бесплатно"},
		ContainsAds:  models.ComplianceNo,
		Gambling:     models.ComplianceNo,
		CollectsData: models.ComplianceBoth,
		ForChildren:  models.ComplianceYes,
		Government:   models.ComplianceNo,
		Banking:      models.ComplianceNo,
		Declarations: []string{"d1", "d2", "d3", "d4"},
	}
}

func TestApplicationService_CreateApplication_Success(t *testing.T) {
	repo := new(mockApplicationRepo)
	devs := new(mockDeveloperRepo)
	cats := new(mockCategoryRepoForApps)
	svc := newAppService(repo, devs, cats, nil)
	ctx := context.Background()

	developerID := uuid.New()
	cats.On("ExistsByName", ctx, "Игры").Return(true, nil)
	devs.On("GetByID", ctx, developerID).Return(&models.Developer{ID: developerID}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Application")).Return(nil)

	app, err := svc.CreateApplication(ctx, developerID, validUploadInput())

	assert.NoError(t, err)
	assert.Equal(t, models.AppStatusPending, app.Status)
	assert.Regexp(t, regexp.MustCompile(`-\d{6}$`), app.ApkID)
}

func TestApplicationService_CreateApplication_ApkIDCollisionRetried(t *testing.T) {
	repo := new(mockApplicationRepo)
	devs := new(mockDeveloperRepo)
	cats := new(mockCategoryRepoForApps)
	svc := newAppService(repo, devs, cats, nil)
	ctx := context.Background()

	developerID := uuid.New()
	cats.On("ExistsByName", ctx, "Игры").Return(true, nil)
	devs.On("GetByID", ctx, developerID).Return(&models.Developer{ID: developerID}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Application")).Return(repository.ErrApkIDTaken).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.Application")).Return(nil).Once()

	app, err := svc.CreateApplication(ctx, developerID, validUploadInput())

	assert.NoError(t, err)
	assert.NotNil(t, app)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestApplicationService_CreateApplication_TooFewScreenshots(t *testing.T) {
	svc := newAppService(new(mockApplicationRepo), new(mockDeveloperRepo), new(mockCategoryRepoForApps), nil)

	in := validUploadInput()
	in.Screenshots = in.Screenshots[:2]

	_, err := svc.CreateApplication(context.Background(), uuid.New(), in)
	assert.True(t, apperror.IsValidation(err))
}

func TestApplicationService_CreateApplication_TooFewTags(t *testing.T) {
	svc := newAppService(new(mockApplicationRepo), new(mockDeveloperRepo), new(mockCategoryRepoForApps), nil)

	in := validUploadInput()
	in.Tags = []string{"мало", "тегов"}

	_, err := svc.CreateApplication(context.Background(), uuid.New(), in)
	assert.True(t, apperror.IsValidation(err))
}

func TestApplicationService_CreateApplication_BadComplianceAnswer(t *testing.T) {
	svc := newAppService(new(mockApplicationRepo), new(mockDeveloperRepo), new(mockCategoryRepoForApps), nil)

	in := validUploadInput()
	// «both» допустим только для сбора данных и детской аудитории.
	in.ContainsAds = models.ComplianceBoth

	_, err := svc.CreateApplication(context.Background(), uuid.New(), in)
	assert.True(t, apperror.IsValidation(err))
}

func TestApplicationService_CreateApplication_UnknownCategory(t *testing.T) {
	repo := new(mockApplicationRepo)
	cats := new(mockCategoryRepoForApps)
	svc := newAppService(repo, new(mockDeveloperRepo), cats, nil)
	ctx := context.Background()

	cats.On("ExistsByName", ctx, "Игры").Return(false, nil)

	_, err := svc.CreateApplication(ctx, uuid.New(), validUploadInput())
	assert.ErrorIs(t, err, apperror.ErrCategoryNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApplicationService_UpdateStatus_ApprovedNormalizedToActive(t *testing.T) {
	repo := new(mockApplicationRepo)
	devs := new(mockDeveloperRepo)
	mailer := new(mockStatusMailer)
	svc := newAppService(repo, devs, new(mockCategoryRepoForApps), mailer)
	ctx := context.Background()

	appID := uuid.New()
	developerID := uuid.New()
	updated := &models.Application{
		ID:          appID,
		DeveloperID: developerID,
		Title:       "Моё приложение",
		Status:      models.AppStatusActive,
	}

	repo.On("UpdateStatus", ctx, appID, models.AppStatusActive, (*string)(nil)).Return(updated, nil)
	devs.On("GetByID", mock.Anything, developerID).Return(&models.Developer{ID: developerID, Email: "dev@example.com"}, nil)
	mailer.On("Enabled").Return(true)
	mailer.On("Send", "dev@example.com", mock.MatchedBy(func(subject string) bool {
		return subject != ""
	}), mock.AnythingOfType("string")).Return(nil)

	app, err := svc.UpdateStatus(ctx, appID, models.AppStatusApproved, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.AppStatusActive, app.Status)
	repo.AssertCalled(t, "UpdateStatus", ctx, appID, models.AppStatusActive, (*string)(nil))
	mailer.AssertCalled(t, "Send", "dev@example.com", mock.Anything, mock.Anything)
}

func TestApplicationService_UpdateStatus_InvalidStatus(t *testing.T) {
	repo := new(mockApplicationRepo)
	svc := newAppService(repo, new(mockDeveloperRepo), new(mockCategoryRepoForApps), nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "pending", nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), "published", nil)
	assert.True(t, apperror.IsValidation(err))

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_UpdateStatus_NotFound(t *testing.T) {
	repo := new(mockApplicationRepo)
	svc := newAppService(repo, new(mockDeveloperRepo), new(mockCategoryRepoForApps), nil)
	ctx := context.Background()

	appID := uuid.New()
	repo.On("UpdateStatus", ctx, appID, models.AppStatusRejected, (*string)(nil)).Return(nil, repository.ErrApplicationNotFound)

	_, err := svc.UpdateStatus(ctx, appID, models.AppStatusRejected, nil)
	assert.ErrorIs(t, err, apperror.ErrApplicationNotFound)
}

func TestApplicationService_UpdateStatus_MailFailureDoesNotFailTransition(t *testing.T) {
	repo := new(mockApplicationRepo)
	devs := new(mockDeveloperRepo)
	mailer := new(mockStatusMailer)
	svc := newAppService(repo, devs, new(mockCategoryRepoForApps), mailer)
	ctx := context.Background()

	appID := uuid.New()
	developerID := uuid.New()
	updated := &models.Application{ID: appID, DeveloperID: developerID, Status: models.AppStatusRejected}

	repo.On("UpdateStatus", ctx, appID, models.AppStatusRejected, (*string)(nil)).Return(updated, nil)
	devs.On("GetByID", mock.Anything, developerID).Return(&models.Developer{ID: developerID, Email: "dev@example.com"}, nil)
	mailer.On("Enabled").Return(true)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	app, err := svc.UpdateStatus(ctx, appID, models.AppStatusRejected, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.AppStatusRejected, app.Status)
}

func TestApplicationService_ListPublic_OnlyActive(t *testing.T) {
	repo := new(mockApplicationRepo)
	svc := newAppService(repo, new(mockDeveloperRepo), new(mockCategoryRepoForApps), nil)
	ctx := context.Background()

	repo.On("List", ctx, models.AppStatusActive, "", "", 20, 0).Return([]models.Application{}, nil)

	apps, err := svc.ListPublic(ctx, "", "", 0, 0)

	assert.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestGenerateApkID_Format(t *testing.T) {
	re := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*-\d{6}$`)

	assert.Regexp(t, re, GenerateApkID("My Cool App"))
	assert.Regexp(t, re, GenerateApkID("  App!!!  "))
	// Полностью нелатинское название сводится к запасному слагу.
	assert.Regexp(t, regexp.MustCompile(`^app-\d{6}$`), GenerateApkID("Приложение"))
}
