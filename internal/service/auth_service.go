package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
	"github.com/apkmarket/backend/internal/validation"
)

// UserRepoForAuth / DeveloperRepoForAuth / AdminRepoForAuth — зависимости
// сервиса аутентификации. Три вида учётных записей живут в отдельных
// таблицах и не приводятся к общему типу.
type UserRepoForAuth interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type DeveloperRepoForAuth interface {
	Create(ctx context.Context, dev *models.Developer) error
	GetByEmail(ctx context.Context, email string) (*models.Developer, error)
}

type AdminRepoForAuth interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// AuthService инкапсулирует регистрацию и вход для трёх видов учётных записей.
type AuthService struct {
	users      UserRepoForAuth
	developers DeveloperRepoForAuth
	admins     AdminRepoForAuth
	tokens     *TokenManager
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users UserRepoForAuth, developers DeveloperRepoForAuth, admins AdminRepoForAuth, tokens *TokenManager) *AuthService {
	return &AuthService{
		users:      users,
		developers: developers,
		admins:     admins,
		tokens:     tokens,
	}
}

// RegisterUser регистрирует пользователя каталога и сразу выдаёт токен.
func (s *AuthService) RegisterUser(ctx context.Context, email, name, password string) (*models.User, string, error) {
	email, err := s.checkCredentials(email, password)
	if err != nil {
		return nil, "", err
	}
	if err := validation.ValidateNonEmpty("имя", name); err != nil {
		return nil, "", apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", apperror.ErrEmailTaken
		}
		return nil, "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать пользователя")
	}

	token, err := s.tokens.Generate(user.ID, models.KindUser)
	if err != nil {
		return nil, "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return user, token, nil
}

// LoginUser выполняет вход пользователя.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", apperror.ErrInvalidCredentials
		}
		return nil, "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выполнить вход")
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, "", apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, models.KindUser)
	if err != nil {
		return nil, "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return user, token, nil
}

// RegisterDeveloper регистрирует разработчика. Аккаунт создаётся в статусе
// pending и не получает токен: вход возможен только после активации
// администратором.
func (s *AuthService) RegisterDeveloper(ctx context.Context, email, name string, companyName *string, password string) (*models.Developer, error) {
	email, err := s.checkCredentials(email, password)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateNonEmpty("имя", name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	dev := &models.Developer{
		Email:        email,
		Name:         strings.TrimSpace(name),
		CompanyName:  companyName,
		PasswordHash: hash,
	}
	if err := s.developers.Create(ctx, dev); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать разработчика")
	}
	return dev, nil
}

// LoginDeveloper выполняет вход разработчика. До активации аккаунта вход запрещён.
func (s *AuthService) LoginDeveloper(ctx context.Context, email, password string) (*models.Developer, string, error) {
	dev, err := s.developers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrDeveloperNotFound) {
			return nil, "", apperror.ErrInvalidCredentials
		}
		return nil, "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выполнить вход")
	}

	if !checkPassword(dev.PasswordHash, password) {
		return nil, "", apperror.ErrInvalidCredentials
	}
	if dev.Status != models.DeveloperStatusActive {
		return nil, "", apperror.New(apperror.ErrCodeForbidden, "аккаунт разработчика ещё не активирован")
	}

	token, err := s.tokens.Generate(dev.ID, models.KindDeveloper)
	if err != nil {
		return nil, "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return dev, token, nil
}

// LoginAdmin выполняет вход администратора. Администраторы заводятся
// напрямую в хранилище, саморегистрации нет.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*models.Admin, string, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, "", apperror.ErrInvalidCredentials
		}
		return nil, "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выполнить вход")
	}

	if !checkPassword(admin.PasswordHash, password) {
		return nil, "", apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(admin.ID, models.KindAdmin)
	if err != nil {
		return nil, "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return admin, token, nil
}

// checkCredentials валидирует email и пароль и возвращает нормализованный email.
func (s *AuthService) checkCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return "", apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захэшировать пароль")
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
