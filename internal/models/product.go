package models

// Product is the catalogue entry referenced by orders and wishlist entries.
type Product struct {
	ID    int     `json:"id" gorm:"primaryKey"`
	Name  string  `json:"name" gorm:"type:varchar(255)"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}
