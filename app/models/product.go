package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Product is a catalog item offered by an artisan. Stock is the live
// inventory counter and is only ever changed through the conditional
// decrement/increment in the product repository.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Slug        string         `gorm:"type:varchar(220);uniqueIndex" json:"slug" validate:"required,min=2,max=220"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	ArtisanName string         `gorm:"type:varchar(150)" json:"artisan_name" validate:"max=150"`
	Price       float64        `gorm:"type:decimal(10,2);not null" json:"price" validate:"required,gt=0"`
	Stock       int            `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url" validate:"omitempty,url,max=500"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// InStock reports whether the requested quantity is currently available.
// This is a hint for the storefront only; the authoritative check is the
// conditional decrement at checkout time.
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
