package models

import "time"

// OrderStatus values an order can move through
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether status is a known order status
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed order
type Order struct {
	ID        int         `json:"id"`
	Number    string      `json:"number"`
	UserID    int         `json:"userId"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	Items     []OrderItem `json:"items,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// OrderItem is a snapshot of a product at checkout time.
// Name and unit price are copied so later catalog edits do not rewrite history.
type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"orderId"`
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// UpdateOrderStatusRequest represents an admin status transition request
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderListResponse represents a paginated order listing
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Count  int     `json:"count"`
}
