package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review описывает одну оценку с комментарием для одного приложения.
// У настоящего отзыва заполнен UserID, у синтетического (созданного
// администратором) — только DisplayName. HelpfulCount всегда равен
// размеру VoterIDs: оба поля меняются одним атомарным обновлением.
type Review struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ApplicationID uuid.UUID      `db:"application_id" json:"application_id"`
	UserID        *uuid.UUID     `db:"user_id" json:"user_id,omitempty"`
	DisplayName   *string        `db:"display_name" json:"display_name,omitempty"`
	Rating        int            `db:"rating" json:"rating"`
	Comment       *string        `db:"comment" json:"comment,omitempty"`
	HelpfulCount  int            `db:"helpful_count" json:"helpful_count"`
	VoterIDs      pq.StringArray `db:"voter_ids" json:"-"`
	IsAdmin       bool           `db:"is_admin" json:"is_admin"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ReviewWithAuthor — отзыв, обогащённый отображаемым именем автора
// для публичной выдачи.
type ReviewWithAuthor struct {
	Review
	AuthorName string `db:"author_name" json:"author_name"`
}

// ReviewStats агрегирует оценки приложения: среднее округлено до одного
// знака, Distribution содержит счётчики для всех значений 1–5.
type ReviewStats struct {
	Average      float64     `json:"average"`
	Total        int         `json:"total"`
	Distribution map[int]int `json:"distribution"`
}
