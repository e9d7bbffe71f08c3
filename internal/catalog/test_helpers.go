package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
)

// sqlite cannot digest the postgres column defaults on the models, so the
// test schema is written out by hand.
var testTableDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  location TEXT,
  role TEXT NOT NULL,
  stall_name TEXT,
  business_type TEXT,
  rating NUMERIC,
  total_ratings INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT,
  unit_price NUMERIC NOT NULL,
  unit TEXT NOT NULL,
  available_quantity INTEGER NOT NULL CHECK (available_quantity >= 0),
  minimum_order INTEGER NOT NULL DEFAULT 1,
  expiry_date DATETIME,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	for _, ddl := range testTableDDL {
		if err := conn.Exec(ddl).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}
	return conn
}

func mustCreateSupplier(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	businessType := enums.BusinessTypeWholesaler
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("supplier_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Catalog Supplier",
		Role:         enums.UserRoleSupplier,
		BusinessType: &businessType,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return user
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, supplierID uuid.UUID, name, category string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                uuid.New(),
		SupplierID:        supplierID,
		Name:              name,
		Category:          category,
		UnitPrice:         decimal.NewFromFloat(24.50),
		Unit:              "kg",
		AvailableQuantity: 100,
		MinimumOrder:      1,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
