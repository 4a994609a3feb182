package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gearshop/backend/internal/models"
	"go.uber.org/zap"
)

// productRepository implements ProductRepository
type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves products with pagination, optional category filter and name search
func (r *productRepository) List(ctx context.Context, page, count int, category, search string) ([]models.Product, error) {
	query := `
		SELECT id, name, description, price, category, image_url, stock, created_at
		FROM products
	`
	conditions := ""
	args := []any{}

	if category != "" {
		conditions = ` WHERE category = ?`
		args = append(args, category)
	}
	if search != "" {
		if conditions == "" {
			conditions = ` WHERE name LIKE ?`
		} else {
			conditions += ` AND name LIKE ?`
		}
		args = append(args, "%"+search+"%")
	}

	query += conditions + ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, count, (page-1)*count)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list products", zap.Error(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Category,
			&product.ImageURL,
			&product.Stock,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// GetByID retrieves a product by ID
func (r *productRepository) GetByID(ctx context.Context, productID int) (*models.Product, error) {
	query := `
		SELECT id, name, description, price, category, image_url, stock, created_at
		FROM products
		WHERE id = ?
		LIMIT 1
	`

	product := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.ImageURL,
		&product.Stock,
		&product.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found")
	}
	if err != nil {
		r.logger.Error("failed to get product by id", zap.Error(err), zap.Int("productId", productID))
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return product, nil
}

// Create inserts a new product into the database
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, category, image_url, stock)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.ImageURL,
		product.Stock,
	)
	if err != nil {
		r.logger.Error("failed to create product", zap.Error(err))
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	product.ID = int(id)
	return nil
}

// Update updates a product by ID
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = ?, description = ?, price = ?, category = ?, image_url = ?, stock = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.ImageURL,
		product.Stock,
		product.ID,
	)
	if err != nil {
		r.logger.Error("failed to update product", zap.Error(err), zap.Int("productId", product.ID))
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}

// Delete removes a product by ID
func (r *productRepository) Delete(ctx context.Context, productID int) error {
	query := `DELETE FROM products WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, productID)
	if err != nil {
		r.logger.Error("failed to delete product", zap.Error(err), zap.Int("productId", productID))
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}
