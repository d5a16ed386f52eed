package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a dashboard account. Every user is also a pilot: the
// availability query and schedule assignments draw from this table.
type User struct {
	ID           string    `db:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `db:"name" gorm:"not null"`
	Email        string    `db:"email" gorm:"uniqueIndex;not null"`
	Phone        string    `db:"phone" gorm:"not null"`
	PasswordHash string    `db:"password_hash" gorm:"not null"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
