package grouporders

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/db"
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
	`CREATE TABLE IF NOT EXISTS group_orders (
  id TEXT PRIMARY KEY,
  creator_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  target_quantity INTEGER NOT NULL,
  current_quantity INTEGER NOT NULL DEFAULT 0,
  unit_price NUMERIC NOT NULL,
  discount_price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  deadline DATETIME NOT NULL,
  delivery_address TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS group_order_participants (
  id TEXT PRIMARY KEY,
  group_order_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  joined_at DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_group_order_vendor
  ON group_order_participants (group_order_id, vendor_id);`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:grouporders_%s?mode=memory&cache=shared", uuid.NewString())
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

func newTestClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	return db.NewFromConn(conn), conn
}

func mustCreateUser(t *testing.T, tx *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s_%s@example.com", role, uuid.NewString()),
		PasswordHash: "hash",
		Name:         fmt.Sprintf("Group %s", role),
		Role:         role,
	}
	if role == enums.UserRoleSupplier {
		businessType := enums.BusinessTypeFarm
		user.BusinessType = &businessType
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateSupplierProduct(t *testing.T, tx *gorm.DB, supplierID uuid.UUID, price float64, qty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                uuid.New(),
		SupplierID:        supplierID,
		Name:              "Bulk Onions",
		Category:          "vegetables",
		UnitPrice:         decimal.NewFromFloat(price),
		Unit:              "kg",
		AvailableQuantity: qty,
		MinimumOrder:      1,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func productAvailable(t *testing.T, tx *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.AvailableQuantity
}

func forceDeadline(t *testing.T, tx *gorm.DB, groupOrderID uuid.UUID, deadline time.Time) {
	t.Helper()
	if err := tx.Model(&models.GroupOrder{}).
		Where("id = ?", groupOrderID).
		Update("deadline", deadline).Error; err != nil {
		t.Fatalf("force deadline: %v", err)
	}
}
