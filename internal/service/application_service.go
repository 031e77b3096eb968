package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/apkmarket/backend/internal/goroutine"
	"github.com/apkmarket/backend/internal/logger"
	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
	"github.com/apkmarket/backend/internal/validation"
)

// ApplicationRepository описывает зависимости сервиса каталога от хранилища.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetByApkID(ctx context.Context, apkID string) (*models.Application, error)
	List(ctx context.Context, status, category, search string, limit, offset int) ([]models.Application, error)
	ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]models.Application, error)
	ListByStatus(ctx context.Context, status string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, message *string) (*models.Application, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeveloperRepoForApps отдаёт контактные данные владельца приложения.
type DeveloperRepoForApps interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Developer, error)
}

// CategoryRepoForApps проверяет существование рубрики при загрузке.
type CategoryRepoForApps interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// StatusMailer — внешний сервис доставки почты. Ошибка отправки логируется
// и никогда не влияет на результат основной операции.
type StatusMailer interface {
	Enabled() bool
	Send(to, subject, html string) error
}

// CatalogFeed — события модерации для панелей (может быть nil).
type CatalogFeed interface {
	NotifyAdmins(eventType string, data any) error
	NotifyDeveloper(developerID uuid.UUID, eventType string, data any) error
}

// CreateApplicationInput содержит метаданные загружаемого приложения.
// Пути к файлам уже сохранены хранилищем загрузок.
type CreateApplicationInput struct {
	Title        string
	Description  string
	Category     string
	Platform     string
	PackagePath  string
	IconPath     string
	Screenshots  []string
	Tags         []string
	ContainsAds  string
	Gambling     string
	CollectsData string
	ForChildren  string
	Government   string
	Banking      string
	Declarations []string
}

// ApplicationService управляет каталогом: загрузка с валидацией анкеты,
// публичная выдача и административные переходы статусов с почтовым
// уведомлением владельца.
type ApplicationService struct {
	repo       ApplicationRepository
	developers DeveloperRepoForApps
	categories CategoryRepoForApps
	mailer     StatusMailer
	feed       CatalogFeed

	// dispatch выносит побочные эффекты с критического пути запроса.
	dispatch func(fn func())
}

// NewApplicationService создаёт сервис каталога. mailer и feed могут быть nil.
func NewApplicationService(repo ApplicationRepository, developers DeveloperRepoForApps, categories CategoryRepoForApps, mailer StatusMailer, feed CatalogFeed) *ApplicationService {
	return &ApplicationService{
		repo:       repo,
		developers: developers,
		categories: categories,
		mailer:     mailer,
		feed:       feed,
		dispatch:   goroutine.SafeGo,
	}
}

// CreateApplication сохраняет загрузку разработчика в статусе pending.
func (s *ApplicationService) CreateApplication(ctx context.Context, developerID uuid.UUID, in CreateApplicationInput) (*models.Application, error) {
	if developerID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор разработчика")
	}
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	if _, err := s.developers.GetByID(ctx, developerID); err != nil {
		if errors.Is(err, repository.ErrDeveloperNotFound) {
			return nil, apperror.ErrDeveloperNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить разработчика")
	}

	app := &models.Application{
		ApkID:        GenerateApkID(in.Title),
		DeveloperID:  developerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		Platform:     in.Platform,
		PackagePath:  in.PackagePath,
		IconPath:     in.IconPath,
		Screenshots:  in.Screenshots,
		Tags:         in.Tags,
		ContainsAds:  in.ContainsAds,
		Gambling:     in.Gambling,
		CollectsData: in.CollectsData,
		ForChildren:  in.ForChildren,
		Government:   in.Government,
		Banking:      in.Banking,
		Declarations: in.Declarations,
	}

	err := s.repo.Create(ctx, app)
	if errors.Is(err, repository.ErrApkIDTaken) {
		// Случайный суффикс столкнулся с существующим идентификатором —
		// генерируем новый и повторяем один раз.
		app.ApkID = GenerateApkID(in.Title)
		err = s.repo.Create(ctx, app)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить приложение")
	}

	if s.feed != nil {
		_ = s.feed.NotifyAdmins("application.submitted", app)
	}

	return app, nil
}

// ListPublic возвращает страницу опубликованных приложений.
func (s *ApplicationService) ListPublic(ctx context.Context, category, search string, limit, offset int) ([]models.Application, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	apps, err := s.repo.List(ctx, models.AppStatusActive, category, search, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить каталог")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// GetByApkID возвращает приложение по человекочитаемому идентификатору.
func (s *ApplicationService) GetByApkID(ctx context.Context, apkID string) (*models.Application, error) {
	if strings.TrimSpace(apkID) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор приложения")
	}

	app, err := s.repo.GetByApkID(ctx, apkID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить приложение")
	}
	return app, nil
}

// ListByDeveloper возвращает все приложения разработчика.
func (s *ApplicationService) ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]models.Application, error) {
	apps, err := s.repo.ListByDeveloper(ctx, developerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить приложения")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// ListPending возвращает загрузки, ожидающие модерации.
func (s *ApplicationService) ListPending(ctx context.Context) ([]models.Application, error) {
	apps, err := s.repo.ListByStatus(ctx, models.AppStatusPending)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить очередь модерации")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// CountByStatus — сводка для админ-панели.
func (s *ApplicationService) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать сводку")
	}
	return counts, nil
}

// UpdateStatus выполняет административный переход статуса. "approved"
// нормализуется в "active" до записи. После успешного обновления владельцу
// уходит письмо: отправка выполняется вне критического пути, её сбой
// логируется и не откатывает переход.
func (s *ApplicationService) UpdateStatus(ctx context.Context, applicationID uuid.UUID, status string, message *string) (*models.Application, error) {
	switch status {
	case models.AppStatusApproved:
		status = models.AppStatusActive
	case models.AppStatusActive, models.AppStatusDeactive, models.AppStatusRejected:
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "статус должен быть approved, active, deactive или rejected")
	}

	app, err := s.repo.UpdateStatus(ctx, applicationID, status, message)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус")
	}

	s.dispatch(func() {
		s.notifyStatusChange(context.Background(), app)
	})

	return app, nil
}

// DeleteApplication удаляет приложение из каталога.
func (s *ApplicationService) DeleteApplication(ctx context.Context, applicationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, applicationID); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return apperror.ErrApplicationNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить приложение")
	}
	return nil
}

// notifyStatusChange доставляет уведомления о переходе статуса: письмо
// владельцу и события в ws-потоки. Любой сбой здесь только логируется.
func (s *ApplicationService) notifyStatusChange(ctx context.Context, app *models.Application) {
	if s.feed != nil {
		_ = s.feed.NotifyDeveloper(app.DeveloperID, "application.status", app)
		_ = s.feed.NotifyAdmins("application.status", app)
	}

	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}

	dev, err := s.developers.GetByID(ctx, app.DeveloperID)
	if err != nil {
		s.logNotifyError(app, err)
		return
	}

	subject, body := statusEmail(app)
	if err := s.mailer.Send(dev.Email, subject, body); err != nil {
		s.logNotifyError(app, err)
	}
}

func (s *ApplicationService) logNotifyError(app *models.Application, err error) {
	if logger.Log != nil {
		logger.Log.WithError(err).WithField("apk_id", app.ApkID).
			Error("application service: не удалось отправить уведомление о смене статуса")
	}
}

// statusEmail возвращает тему и тело письма для нового статуса приложения.
func statusEmail(app *models.Application) (string, string) {
	var subject string
	switch app.Status {
	case models.AppStatusActive:
		subject = fmt.Sprintf("Приложение «%s» опубликовано", app.Title)
	case models.AppStatusDeactive:
		subject = fmt.Sprintf("Приложение «%s» снято с публикации", app.Title)
	case models.AppStatusRejected:
		subject = fmt.Sprintf("Приложение «%s» отклонено", app.Title)
	default:
		subject = fmt.Sprintf("Статус приложения «%s» изменён", app.Title)
	}

	body := fmt.Sprintf("<p>Новый статус приложения <b>%s</b>: %s.</p>", app.Title, app.Status)
	if app.AdminMessage != nil && *app.AdminMessage != "" {
		body += fmt.Sprintf("<p>Комментарий модератора: %s</p>", *app.AdminMessage)
	}
	return subject, body
}

// validateInput проверяет метаданные и комплаенс-анкету загрузки.
func (s *ApplicationService) validateInput(ctx context.Context, in CreateApplicationInput) error {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание", in.Description, 0, validation.MaxDescriptionLength); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePlatform(in.Platform); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("пакет приложения", in.PackagePath); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateScreenshots(len(in.Screenshots)); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateTags(in.Tags); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDeclarations(in.Declarations); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	answers := []struct {
		field     string
		value     string
		allowBoth bool
	}{
		{"реклама", in.ContainsAds, false},
		{"азартные игры", in.Gambling, false},
		{"сбор данных", in.CollectsData, true},
		{"детская аудитория", in.ForChildren, true},
		{"государственный сектор", in.Government, false},
		{"банковские операции", in.Banking, false},
	}
	for _, a := range answers {
		if err := validation.ValidateComplianceAnswer(a.field, a.value, a.allowBoth); err != nil {
			return apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	exists, err := s.categories.ExistsByName(ctx, in.Category)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить категорию")
	}
	if !exists {
		return apperror.ErrCategoryNotFound
	}

	return nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateApkID строит человекочитаемый идентификатор приложения:
// slug названия плюс случайный шестизначный суффикс.
func GenerateApkID(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "app"
	}
	return fmt.Sprintf("%s-%06d", slug, rand.Intn(1000000))
}
