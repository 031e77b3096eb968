package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Статусы приложения в каталоге. Новые загрузки всегда начинают с pending,
// дальнейшие переходы выполняет только администратор.
const (
	AppStatusPending  = "pending"
	AppStatusApproved = "approved" // принимается на входе, но нормализуется в active
	AppStatusActive   = "active"
	AppStatusDeactive = "deactive"
	AppStatusRejected = "rejected"
)

// Платформы, для которых публикуется пакет.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformBoth    = "both"
)

// Ответы на вопросы комплаенс-анкеты.
const (
	ComplianceYes  = "yes"
	ComplianceNo   = "no"
	ComplianceBoth = "both"
)

// Application описывает загруженный пакет приложения вместе с метаданными
// и комплаенс-анкетой. ApkID — человекочитаемый идентификатор вида
// <slug>-<6 цифр>, отличный от первичного ключа.
type Application struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	ApkID        string         `db:"apk_id" json:"apk_id"`
	DeveloperID  uuid.UUID      `db:"developer_id" json:"developer_id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Category     string         `db:"category" json:"category"`
	Platform     string         `db:"platform" json:"platform"`
	PackagePath  string         `db:"package_path" json:"package_path"`
	IconPath     string         `db:"icon_path" json:"icon_path"`
	Screenshots  pq.StringArray `db:"screenshots" json:"screenshots"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	ContainsAds  string         `db:"contains_ads" json:"contains_ads"`
	Gambling     string         `db:"gambling" json:"gambling"`
	CollectsData string         `db:"collects_data" json:"collects_data"`
	ForChildren  string         `db:"for_children" json:"for_children"`
	Government   string         `db:"government" json:"government"`
	Banking      string         `db:"banking" json:"banking"`
	Declarations pq.StringArray `db:"declarations" json:"declarations"`
	Status       string         `db:"status" json:"status"`
	AdminMessage *string        `db:"admin_message" json:"admin_message,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
