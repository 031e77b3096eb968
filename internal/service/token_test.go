package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/apkmarket/backend/internal/models"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	subjectID := uuid.New()

	raw, err := tm.Generate(subjectID, models.KindDeveloper)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)

	parsedID, kind, err := tm.Parse(raw)
	assert.NoError(t, err)
	assert.Equal(t, subjectID, parsedID)
	assert.Equal(t, models.KindDeveloper, kind)
}

func TestTokenManager_Parse_WrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-one", time.Hour)
	other := NewTokenManager("secret-two", time.Hour)

	raw, err := tm.Generate(uuid.New(), models.KindUser)
	assert.NoError(t, err)

	_, _, err = other.Parse(raw)
	assert.Error(t, err)
}

func TestTokenManager_Parse_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, _, err := tm.Parse("not-a-token")
	assert.Error(t, err)

	_, _, err = tm.Parse("")
	assert.Error(t, err)
}

func TestTokenManager_Parse_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	raw, err := tm.Generate(uuid.New(), models.KindAdmin)
	assert.NoError(t, err)

	_, _, err = tm.Parse(raw)
	assert.Error(t, err)
}
