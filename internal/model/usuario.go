package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is a plant operator. Rol: "operario" | "supervisor"
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `gorm:"uniqueIndex;not null"`
	Nombre    string    `gorm:"not null"`
	Email     *string
	Rol       string `gorm:"type:varchar(20);not null"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
