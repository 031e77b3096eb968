package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/pkg/apperror"
	"github.com/apkmarket/backend/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockDevRepoForAuth struct {
	mock.Mock
}

func (m *mockDevRepoForAuth) Create(ctx context.Context, dev *models.Developer) error {
	args := m.Called(ctx, dev)
	if args.Error(0) == nil {
		dev.ID = uuid.New()
		dev.Status = models.DeveloperStatusPending
	}
	return args.Error(0)
}

func (m *mockDevRepoForAuth) GetByEmail(ctx context.Context, email string) (*models.Developer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Developer), args.Error(1)
}

type mockAdminRepoForAuth struct {
	mock.Mock
}

func (m *mockAdminRepoForAuth) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func newAuthService(users *mockUserRepo, devs *mockDevRepoForAuth, admins *mockAdminRepoForAuth) *AuthService {
	return NewAuthService(users, devs, admins, NewTokenManager("test-secret", time.Hour))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_RegisterUser_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc := newAuthService(users, new(mockDevRepoForAuth), new(mockAdminRepoForAuth))
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, token, err := svc.RegisterUser(ctx, "User@Example.com", "Пётр", "Password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestAuthService_RegisterUser_EmailTaken(t *testing.T) {
	users := new(mockUserRepo)
	svc := newAuthService(users, new(mockDevRepoForAuth), new(mockAdminRepoForAuth))
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrEmailTaken)

	_, _, err := svc.RegisterUser(ctx, "taken@example.com", "Пётр", "Password123")

	assert.ErrorIs(t, err, apperror.ErrEmailTaken)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_RegisterUser_WeakPassword(t *testing.T) {
	svc := newAuthService(new(mockUserRepo), new(mockDevRepoForAuth), new(mockAdminRepoForAuth))

	_, _, err := svc.RegisterUser(context.Background(), "user@example.com", "Пётр", "123")
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_LoginUser_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc := newAuthService(users, new(mockDevRepoForAuth), new(mockAdminRepoForAuth))
	ctx := context.Background()

	stored := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: mustHash(t, "Password123")}
	users.On("GetByEmail", ctx, "user@example.com").Return(stored, nil)

	_, _, err := svc.LoginUser(ctx, "user@example.com", "WrongPassword1")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_LoginUser_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := newAuthService(users, new(mockDevRepoForAuth), new(mockAdminRepoForAuth))
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	// Несуществующий email неотличим от неверного пароля.
	_, _, err := svc.LoginUser(ctx, "ghost@example.com", "Password123")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_RegisterDeveloper_PendingWithoutToken(t *testing.T) {
	devs := new(mockDevRepoForAuth)
	svc := newAuthService(new(mockUserRepo), devs, new(mockAdminRepoForAuth))
	ctx := context.Background()

	devs.On("Create", ctx, mock.AnythingOfType("*models.Developer")).Return(nil)

	company := "ООО Рога"
	dev, err := svc.RegisterDeveloper(ctx, "dev@example.com", "Разработчик", &company, "Password123")

	assert.NoError(t, err)
	assert.Equal(t, models.DeveloperStatusPending, dev.Status)
}

func TestAuthService_LoginDeveloper_PendingRefused(t *testing.T) {
	devs := new(mockDevRepoForAuth)
	svc := newAuthService(new(mockUserRepo), devs, new(mockAdminRepoForAuth))
	ctx := context.Background()

	stored := &models.Developer{
		ID:           uuid.New(),
		Email:        "dev@example.com",
		PasswordHash: mustHash(t, "Password123"),
		Status:       models.DeveloperStatusPending,
	}
	devs.On("GetByEmail", ctx, "dev@example.com").Return(stored, nil)

	_, _, err := svc.LoginDeveloper(ctx, "dev@example.com", "Password123")
	assert.Error(t, err)
	assert.Equal(t, 403, apperror.HTTPStatusOf(err))
}

func TestAuthService_LoginDeveloper_ActiveSuccess(t *testing.T) {
	devs := new(mockDevRepoForAuth)
	svc := newAuthService(new(mockUserRepo), devs, new(mockAdminRepoForAuth))
	ctx := context.Background()

	stored := &models.Developer{
		ID:           uuid.New(),
		Email:        "dev@example.com",
		PasswordHash: mustHash(t, "Password123"),
		Status:       models.DeveloperStatusActive,
	}
	devs.On("GetByEmail", ctx, "dev@example.com").Return(stored, nil)

	dev, token, err := svc.LoginDeveloper(ctx, "dev@example.com", "Password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, stored.ID, dev.ID)
}

func TestAuthService_LoginAdmin_Success(t *testing.T) {
	admins := new(mockAdminRepoForAuth)
	svc := newAuthService(new(mockUserRepo), new(mockDevRepoForAuth), admins)
	ctx := context.Background()

	stored := &models.Admin{ID: uuid.New(), Email: "admin@example.com", PasswordHash: mustHash(t, "Password123")}
	admins.On("GetByEmail", ctx, "admin@example.com").Return(stored, nil)

	admin, token, err := svc.LoginAdmin(ctx, "admin@example.com", "Password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, stored.ID, admin.ID)
}
