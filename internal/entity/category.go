package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node of the marketplace taxonomy. Level and Path are derived
// from the parent chain and rewritten by the category service whenever the
// parent or slug changes; they are never edited directly.
type Category struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug         string     `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description  string     `gorm:"size:1000" json:"description"`
	ImageURL     *string    `gorm:"type:text" json:"image_url,omitempty"`
	ParentID     *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent       *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Level        int        `gorm:"not null;default:0;index" json:"level"`
	Path         string     `gorm:"size:2000;index" json:"path"`
	DisplayOrder int        `gorm:"not null;default:0;index" json:"display_order"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	IsVisible    bool       `gorm:"not null;default:true" json:"is_visible"`
	IsFeatured   bool       `gorm:"not null;default:false" json:"is_featured"`
	ShowOnHome   bool       `gorm:"not null;default:false" json:"show_on_homepage"`
	ProductCount int        `gorm:"not null;default:0" json:"product_count"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
