package models

import (
	"time"

	"github.com/google/uuid"
)

// Виды учётных записей. Пользователи, разработчики и администраторы
// хранятся в отдельных таблицах и не взаимозаменяемы.
const (
	KindUser      = "user"
	KindDeveloper = "developer"
	KindAdmin     = "admin"
)

// Статусы аккаунта разработчика.
const (
	DeveloperStatusPending  = "pending"
	DeveloperStatusActive   = "active"
	DeveloperStatusDeactive = "deactive"
	DeveloperStatusRejected = "rejected"
)

// User описывает конечного пользователя каталога.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Developer описывает аккаунт разработчика, публикующего приложения.
type Developer struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	CompanyName  *string   `db:"company_name" json:"company_name,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Admin описывает учётную запись администратора площадки.
type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
