package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apkmarket/backend/internal/dto"
	"github.com/apkmarket/backend/internal/http/handlers/common"
	"github.com/apkmarket/backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации и логина трёх видов
// учётных записей: пользователь витрины, разработчик, администратор.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterUser обрабатывает POST /api/auth/register.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	user, token, err := h.auth.RegisterUser(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{Token: token, Account: user})
}

// LoginUser обрабатывает POST /api/auth/login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	user, token, err := h.auth.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, Account: user})
}

// RegisterDeveloper обрабатывает POST /api/auth/developer/register.
// Токен не выдаётся: аккаунт ждёт активации администратором.
func (h *AuthHandler) RegisterDeveloper(c *gin.Context) {
	var req dto.RegisterDeveloperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	dev, err := h.auth.RegisterDeveloper(c.Request.Context(), req.Email, req.Name, req.CompanyName, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dev)
}

// LoginDeveloper обрабатывает POST /api/auth/developer/login.
func (h *AuthHandler) LoginDeveloper(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	dev, token, err := h.auth.LoginDeveloper(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, Account: dev})
}

// LoginAdmin обрабатывает POST /api/auth/admin/login.
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	admin, token, err := h.auth.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, Account: admin})
}
