package models

// CartItem represents a single product entry in a user's cart
type CartItem struct {
	ID        int `json:"id"`
	UserID    int `json:"userId"`
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CartItemResponse is a cart row joined with its product data
type CartItemResponse struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// CartResponse represents the full cart of a user
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

// AddCartItemRequest represents an add-to-cart request
type AddCartItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// UpdateCartItemRequest represents a set-quantity request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
