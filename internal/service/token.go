package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager отвечает за выпуск и проверку JWT access токенов.
// Токен несёт идентификатор субъекта и вид учётной записи
// (user / developer / admin).
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
}

type accessClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

// Generate выпускает access токен для субъекта заданного вида.
func (m *TokenManager) Generate(subjectID uuid.UUID, kind string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: не удалось подписать токен: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок действия токена и возвращает
// идентификатор субъекта и вид учётной записи.
func (m *TokenManager) Parse(raw string) (uuid.UUID, string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: неожиданный метод подписи %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, "", fmt.Errorf("token: токен невалиден")
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("token: некорректный subject: %w", err)
	}

	return subjectID, claims.Kind, nil
}

// AccessTTL возвращает время жизни access токена.
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}
