package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apkmarket/backend/internal/http/handlers/common"
	"github.com/apkmarket/backend/internal/service"
)

// CatalogHandler обслуживает публичную витрину: список опубликованных
// приложений, карточка приложения и справочник категорий.
type CatalogHandler struct {
	apps       *service.ApplicationService
	categories *service.CategoryService
}

func NewCatalogHandler(apps *service.ApplicationService, categories *service.CategoryService) *CatalogHandler {
	return &CatalogHandler{apps: apps, categories: categories}
}

// List GET /api/apps
func (h *CatalogHandler) List(c *gin.Context) {
	category := c.Query("category")
	search := c.Query("search")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	apps, err := h.apps.ListPublic(c.Request.Context(), category, search, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

// Get GET /api/apps/:apkId
func (h *CatalogHandler) Get(c *gin.Context) {
	apkID := c.Param("apkId")
	if apkID == "" {
		common.RespondBadRequest(c, "параметр apkId обязателен")
		return
	}

	app, err := h.apps.GetByApkID(c.Request.Context(), apkID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListCategories GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
