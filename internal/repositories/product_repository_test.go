package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gearshop/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupProductTestRepository creates a product repository with a mock database
func setupProductTestRepository(t *testing.T) (*productRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewProductRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func productColumns() []string {
	return []string{"id", "name", "description", "price", "category", "image_url", "stock", "created_at"}
}

func TestProductRepository_List(t *testing.T) {
	now := time.Now()

	t.Run("without filters", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(1, "Keyboard", "Mechanical", 50.0, "peripherals", "", 5, now).
			AddRow(2, "Mouse", "Wireless", 25.0, "peripherals", "", 8, now)
		mock.ExpectQuery(`SELECT id, name, description, price, category, image_url, stock, created_at FROM products`).
			WithArgs(20, 0).
			WillReturnRows(rows)

		products, err := repo.List(context.Background(), 1, 20, "", "")
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with category filter", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(1, "Keyboard", "Mechanical", 50.0, "peripherals", "", 5, now)
		mock.ExpectQuery(`SELECT id, name, description, price, category, image_url, stock, created_at FROM products`).
			WithArgs("peripherals", 20, 0).
			WillReturnRows(rows)

		products, err := repo.List(context.Background(), 1, 20, "peripherals", "")
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with category and search", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, name, description, price, category, image_url, stock, created_at FROM products`).
			WithArgs("peripherals", "%key%", 20, 0).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		products, err := repo.List(context.Background(), 1, 20, "peripherals", "key")
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, name, description, price, category, image_url, stock, created_at FROM products`).
			WithArgs(20, 0).
			WillReturnError(errors.New("database error"))

		products, err := repo.List(context.Background(), 1, 20, "", "")
		assert.Error(t, err)
		assert.Nil(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_GetByID(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(3, "Keyboard", "Mechanical", 50.0, "peripherals", "", 5, now)
		mock.ExpectQuery(`SELECT id, name, description, price, category, image_url, stock, created_at FROM products`).
			WithArgs(3).
			WillReturnRows(rows)

		product, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Keyboard", product.Name)
		assert.Equal(t, 5, product.Stock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, name, description, price, category, image_url, stock, created_at FROM products`).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(productColumns()))

		product, err := repo.GetByID(context.Background(), 99)
		assert.Error(t, err)
		assert.Nil(t, product)
		assert.Contains(t, err.Error(), "product not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO products`).
			WithArgs("Keyboard", "Mechanical", 50.0, "peripherals", "", 5).
			WillReturnResult(sqlmock.NewResult(7, 1))

		product := &models.Product{Name: "Keyboard", Description: "Mechanical", Price: 50, Category: "peripherals", Stock: 5}
		err := repo.Create(context.Background(), product)
		require.NoError(t, err)
		assert.Equal(t, 7, product.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO products`).
			WithArgs("Keyboard", "", 50.0, "", "", 5).
			WillReturnError(errors.New("database error"))

		err := repo.Create(context.Background(), &models.Product{Name: "Keyboard", Price: 50, Stock: 5})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE products`).
			WithArgs("Keyboard", "Mechanical", 60.0, "peripherals", "", 4, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		product := &models.Product{ID: 3, Name: "Keyboard", Description: "Mechanical", Price: 60, Category: "peripherals", Stock: 4}
		assert.NoError(t, repo.Update(context.Background(), product))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE products`).
			WithArgs("Keyboard", "", 60.0, "", "", 4, 99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), &models.Product{ID: 99, Name: "Keyboard", Price: 60, Stock: 4})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "product not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM products`).
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupProductTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM products`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 99)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "product not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
