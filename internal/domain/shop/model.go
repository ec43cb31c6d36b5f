package shop

import "time"

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // pocket sniffles
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewItem struct {
	Name        string
	Description string
	Price       int64
	Stock       int
	CreatedBy   int64
}
