package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apkmarket/backend/internal/dto"
	"github.com/apkmarket/backend/internal/http/handlers/common"
	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/repository"
	"github.com/apkmarket/backend/internal/service"
)

// AdminHandler обслуживает админ-панель: модерация приложений,
// управление разработчиками и справочником категорий.
type AdminHandler struct {
	apps       *service.ApplicationService
	categories *service.CategoryService
	developers *repository.DeveloperRepository
}

func NewAdminHandler(apps *service.ApplicationService, categories *service.CategoryService, developers *repository.DeveloperRepository) *AdminHandler {
	return &AdminHandler{apps: apps, categories: categories, developers: developers}
}

// UpdateApplicationStatus POST /api/admin/update-status/:id
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	applicationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный id приложения")
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	app, err := h.apps.UpdateStatus(c.Request.Context(), applicationID, req.Status, req.Message)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListPendingApplications GET /api/admin/apps/pending
func (h *AdminHandler) ListPendingApplications(c *gin.Context) {
	apps, err := h.apps.ListPending(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

// DeleteApplication DELETE /api/admin/apps/:id
func (h *AdminHandler) DeleteApplication(c *gin.Context) {
	applicationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный id приложения")
		return
	}

	if err := h.apps.DeleteApplication(c.Request.Context(), applicationID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "приложение удалено"})
}

// Stats GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	counts, err := h.apps.CountByStatus(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ModerationStatsResponse{
		Pending:  counts[models.AppStatusPending],
		Active:   counts[models.AppStatusActive],
		Deactive: counts[models.AppStatusDeactive],
		Rejected: counts[models.AppStatusRejected],
	})
}

// ListDevelopers GET /api/admin/developers
func (h *AdminHandler) ListDevelopers(c *gin.Context) {
	developers, err := h.developers.List(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "не удалось загрузить разработчиков")
		return
	}
	if developers == nil {
		developers = []models.Developer{}
	}

	c.JSON(http.StatusOK, gin.H{"developers": developers})
}

// UpdateDeveloperStatus PATCH /api/admin/developers/:id/status
func (h *AdminHandler) UpdateDeveloperStatus(c *gin.Context) {
	developerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный id разработчика")
		return
	}

	var req dto.UpdateDeveloperStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	switch req.Status {
	case models.DeveloperStatusActive, models.DeveloperStatusDeactive, models.DeveloperStatusRejected, models.DeveloperStatusPending:
	default:
		common.RespondBadRequest(c, "статус должен быть pending, active, deactive или rejected")
		return
	}

	if err := h.developers.UpdateStatus(c.Request.Context(), developerID, req.Status); err != nil {
		if errors.Is(err, repository.ErrDeveloperNotFound) {
			common.RespondNotFound(c, "разработчик не найден")
			return
		}
		common.RespondInternalError(c, "не удалось обновить статус разработчика")
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "статус обновлён"})
}

// CreateCategory POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	category, err := h.categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DeleteCategory DELETE /api/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный id категории")
		return
	}

	if err := h.categories.Delete(c.Request.Context(), categoryID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "категория удалена"})
}
