package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProductDraft    = "draft"
	ProductActive   = "active"
	ProductArchived = "archived"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Slug        string    `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ExporterID  uuid.UUID `gorm:"type:uuid;not null;index" json:"exporter_id"`
	Exporter    *User     `gorm:"foreignKey:ExporterID" json:"exporter,omitempty"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Currency    string    `gorm:"size:3;not null;default:USD" json:"currency"`
	MinOrderQty int       `gorm:"not null;default:1" json:"min_order_qty"`
	Status      string    `gorm:"size:20;not null;default:draft;index" json:"status"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Views       int       `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
