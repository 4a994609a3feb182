package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gearshop/backend/internal/models"
)

// cartRepository implements CartRepository
type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB) *cartRepository {
	return &cartRepository{
		db: db,
	}
}

// GetItems retrieves the cart rows of a user joined with product data
func (r *cartRepository) GetItems(ctx context.Context, userID int) ([]models.CartItemResponse, error) {
	query := `
		SELECT ci.product_id, p.name, p.price, p.image_url, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItemResponse
	for rows.Next() {
		var item models.CartItemResponse
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.ImageURL, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Subtotal = item.Price * float64(item.Quantity)
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// GetQuantity returns the quantity of a cart row, zero when the row is absent
func (r *cartRepository) GetQuantity(ctx context.Context, userID, productID int) (int, error) {
	query := `SELECT quantity FROM cart_items WHERE user_id = ? AND product_id = ?`

	var quantity int
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cart item quantity: %w", err)
	}

	return quantity, nil
}

// Upsert inserts a cart row or increments the quantity of an existing one
func (r *cartRepository) Upsert(ctx context.Context, userID, productID, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, productID, quantity); err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// UpdateQuantity sets the quantity of a cart row
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, productID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = ?
		WHERE user_id = ? AND product_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("cart item not found")
	}

	return nil
}

// Delete removes a cart row
func (r *cartRepository) Delete(ctx context.Context, userID, productID int) error {
	query := `DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("cart item not found")
	}

	return nil
}

// Clear removes all cart rows of a user.
// Clearing an empty cart is not an error.
func (r *cartRepository) Clear(ctx context.Context, userID int) error {
	query := `DELETE FROM cart_items WHERE user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
