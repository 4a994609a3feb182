package models

import "time"

// Product represents a catalog product
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductRequest represents a create or update product request
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	Stock       int     `json:"stock"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Count    int       `json:"count"`
}
