package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleBuyer    = "buyer"
	RoleExporter = "exporter"
	RoleAdmin    = "admin"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    string    `gorm:"size:50;not null" json:"first_name"`
	LastName     string    `gorm:"size:50;not null" json:"last_name"`
	CompanyName  *string   `gorm:"size:100" json:"company_name,omitempty"`
	Country      *string   `gorm:"size:50" json:"country,omitempty"`
	Role         string    `gorm:"size:20;not null;default:buyer;index" json:"role"`
	Status       string    `gorm:"size:20;not null;default:active" json:"status"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsSuspended reports whether the account may no longer act.
func (u *User) IsSuspended() bool {
	return u.Status == StatusSuspended
}
