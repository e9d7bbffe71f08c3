package ratings

import (
	"fmt"
	"testing"

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
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  order_type TEXT NOT NULL DEFAULT 'individual',
  group_order_id TEXT,
  delivery_address TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS ratings (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
  comment TEXT,
  created_at DATETIME
);`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ratings_%s?mode=memory&cache=shared", uuid.NewString())
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
		Name:         fmt.Sprintf("Rating %s", role),
		Role:         role,
	}
	if role == enums.UserRoleSupplier {
		businessType := enums.BusinessTypeKirana
		user.BusinessType = &businessType
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateOrderWithStatus(t *testing.T, tx *gorm.DB, vendorID, supplierID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		VendorID:        vendorID,
		SupplierID:      supplierID,
		TotalAmount:     decimal.NewFromFloat(240.00),
		Status:          status,
		OrderType:       enums.OrderTypeIndividual,
		DeliveryAddress: "Stall 3",
	}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func supplierAggregate(t *testing.T, tx *gorm.DB, supplierID uuid.UUID) (*decimal.Decimal, int) {
	t.Helper()
	var user models.User
	if err := tx.First(&user, "id = ?", supplierID).Error; err != nil {
		t.Fatalf("load supplier: %v", err)
	}
	return user.Rating, user.TotalRatings
}
