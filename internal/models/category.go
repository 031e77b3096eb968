package models

import (
	"time"

	"github.com/google/uuid"
)

// Category — рубрика каталога приложений.
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
