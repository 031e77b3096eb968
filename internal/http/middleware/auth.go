package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apkmarket/backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextSubjectIDKey = "subjectID"
	ContextKindKey      = "kind"
)

// AuthMiddleware проверяет JWT access токен. Если переданы kinds, доступ
// разрешён только перечисленным видам учётных записей.
func AuthMiddleware(tokens *service.TokenManager, kinds ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		subjectID, kind, err := tokens.Parse(raw)
		if err != nil || subjectID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		if len(kinds) > 0 {
			allowed := false
			for _, k := range kinds {
				if kind == k {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
				return
			}
		}

		c.Set(ContextSubjectIDKey, subjectID)
		c.Set(ContextKindKey, kind)
		c.Next()
	}
}

// SubjectID достаёт идентификатор субъекта из контекста запроса.
func SubjectID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextSubjectIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
