package models

import "time"

// Product represents one inventory record.
type Product struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:120;index" validate:"required,max=120"`
	Category  string    `json:"category" gorm:"size:80" validate:"omitempty,max=80"`
	Price     float64   `json:"price" validate:"gte=0,lte=1000000"`
	Quantity  int       `json:"quantity" validate:"gte=0,lte=1000000"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductInput is the request body shape for create and update. The server
// assigns ID and UpdatedAt; clients never supply them.
type ProductInput struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Category string  `json:"category" validate:"omitempty,max=80"`
	Price    float64 `json:"price" validate:"gte=0,lte=1000000"`
	Quantity int     `json:"quantity" validate:"gte=0,lte=1000000"`
}
