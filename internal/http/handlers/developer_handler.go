package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apkmarket/backend/internal/http/handlers/common"
	"github.com/apkmarket/backend/internal/logger"
	"github.com/apkmarket/backend/internal/service"
	"github.com/apkmarket/backend/internal/storage"
	"github.com/apkmarket/backend/internal/validation"
)

// DeveloperHandler обслуживает кабинет разработчика: загрузка приложения
// с файлами и список собственных загрузок.
type DeveloperHandler struct {
	apps    *service.ApplicationService
	storage *storage.UploadStorage
}

func NewDeveloperHandler(apps *service.ApplicationService, st *storage.UploadStorage) *DeveloperHandler {
	return &DeveloperHandler{apps: apps, storage: st}
}

// Upload обрабатывает POST /api/developer/apps (multipart/form-data).
// Файлы: package, icon, screenshots[]. Остальные поля — метаданные анкеты.
func (h *DeveloperHandler) Upload(c *gin.Context) {
	developerID, err := common.CurrentSubjectID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondBadRequest(c, "ожидается multipart/form-data")
		return
	}

	pkg := firstFile(form, "package")
	icon := firstFile(form, "icon")
	screenshots := form.File["screenshots"]
	if pkg == nil || icon == nil {
		common.RespondBadRequest(c, "поля package и icon обязательны")
		return
	}
	if len(screenshots) < validation.MinScreenshots || len(screenshots) > validation.MaxScreenshots {
		common.RespondBadRequest(c, "количество скриншотов должно быть от 4 до 12")
		return
	}

	var saved []string
	cleanup := func() {
		for _, p := range saved {
			if err := h.storage.Delete(c.Request.Context(), p); err != nil && logger.Log != nil {
				logger.Log.WithError(err).WithField("path", p).Warn("developer handler: не удалось удалить файл после ошибки")
			}
		}
	}

	packagePath, err := h.saveFile(c, pkg, storage.KindPackage)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	saved = append(saved, packagePath)

	iconPath, err := h.saveFile(c, icon, storage.KindImage)
	if err != nil {
		cleanup()
		common.RespondBadRequest(c, err.Error())
		return
	}
	saved = append(saved, iconPath)

	screenshotPaths := make([]string, 0, len(screenshots))
	for _, sc := range screenshots {
		p, err := h.saveFile(c, sc, storage.KindImage)
		if err != nil {
			cleanup()
			common.RespondBadRequest(c, err.Error())
			return
		}
		saved = append(saved, p)
		screenshotPaths = append(screenshotPaths, p)
	}

	in := service.CreateApplicationInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Category:     c.PostForm("category"),
		Platform:     c.PostForm("platform"),
		PackagePath:  packagePath,
		IconPath:     iconPath,
		Screenshots:  screenshotPaths,
		Tags:         splitList(c.PostForm("tags")),
		ContainsAds:  c.PostForm("containsAds"),
		Gambling:     c.PostForm("gambling"),
		CollectsData: c.PostForm("collectsData"),
		ForChildren:  c.PostForm("forChildren"),
		Government:   c.PostForm("government"),
		Banking:      c.PostForm("banking"),
		Declarations: form.Value["declarations"],
	}

	app, err := h.apps.CreateApplication(c.Request.Context(), developerID, in)
	if err != nil {
		cleanup()
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListMine GET /api/developer/apps
func (h *DeveloperHandler) ListMine(c *gin.Context) {
	developerID, err := common.CurrentSubjectID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	apps, err := h.apps.ListByDeveloper(c.Request.Context(), developerID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

// saveFile кладёт один multipart-файл в хранилище и возвращает публичный путь.
func (h *DeveloperHandler) saveFile(c *gin.Context, fh *multipart.FileHeader, kind string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path, _, err := h.storage.Save(c.Request.Context(), fh.Filename, kind, src)
	return path, err
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	files := form.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// splitList разбирает строку вида "a, b, c" в срез непустых значений.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
