package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gearshop/backend/internal/models"
	"go.uber.org/zap"
)

// orderRepository implements OrderRepository
type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithItems creates an order with its item snapshots inside a single
// transaction: the order row, its items, a guarded stock decrement per item
// and the cart cleanup all commit or roll back together.
func (r *orderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO orders (number, user_id, status, total) VALUES (?, ?, ?, ?)`,
		order.Number, order.UserID, order.Status, order.Total,
	)
	if err != nil {
		r.logger.Error("failed to create order", zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	order.ID = int(orderID)

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity) VALUES (?, ?, ?, ?, ?)`,
			item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity,
		); err != nil {
			r.logger.Error("failed to create order item", zap.Error(err))
			return fmt.Errorf("failed to create order item: %w", err)
		}

		// Guarded decrement: the WHERE clause keeps stock from going negative
		// under concurrent checkouts.
		stockResult, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			item.Quantity, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := stockResult.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("insufficient stock for product %q", item.ProductName)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, order.UserID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items.
// If ownerID is non-zero the order must belong to that user; a mismatch is
// reported as not found so callers cannot probe for foreign orders.
func (r *orderRepository) GetByID(ctx context.Context, orderID, ownerID int) (*models.Order, error) {
	query := `
		SELECT id, number, user_id, status, total, created_at
		FROM orders
		WHERE id = ?
	`
	args := []any{orderID}

	if ownerID != 0 {
		query += ` AND user_id = ?`
		args = append(args, ownerID)
	}

	order := &models.Order{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&order.Status,
		&order.Total,
		&order.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found")
	}
	if err != nil {
		r.logger.Error("failed to get order by id", zap.Error(err), zap.Int("orderId", orderID))
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	items, err := r.getItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// getItems retrieves the item snapshots of an order
func (r *orderRepository) getItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// ListByUser retrieves a user's orders, newest first, without item snapshots
func (r *orderRepository) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	query := `
		SELECT id, number, user_id, status, total, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	return r.scanOrders(ctx, query, userID)
}

// ListAll retrieves all orders with pagination and an optional status filter
func (r *orderRepository) ListAll(ctx context.Context, page, count int, status string) ([]models.Order, error) {
	query := `
		SELECT id, number, user_id, status, total, created_at
		FROM orders
	`
	args := []any{}

	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, count, (page-1)*count)

	return r.scanOrders(ctx, query, args...)
}

// scanOrders runs an order listing query and scans the rows
func (r *orderRepository) scanOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.Number, &order.UserID, &order.Status, &order.Total, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the status of an order
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int, status string) error {
	query := `UPDATE orders SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, orderID)
	if err != nil {
		r.logger.Error("failed to update order status", zap.Error(err), zap.Int("orderId", orderID))
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("order not found")
	}

	return nil
}
