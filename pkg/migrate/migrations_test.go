package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sfconnect/sfconnect-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestOrdersMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_orders_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"CHECK (status IN ('pending', 'confirmed', 'preparing', 'ready', 'delivered', 'cancelled'))",
		"CHECK (quantity > 0)",
		"CREATE INDEX IF NOT EXISTS idx_orders_vendor_created",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationEnforcesNonNegativeInventory(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")
	if !strings.Contains(content, "available_quantity integer NOT NULL CHECK (available_quantity >= 0)") {
		t.Error("products migration must enforce non-negative inventory")
	}
}

func TestGroupOrdersMigrationEnforcesUniqueParticipant(t *testing.T) {
	content := readMigration(t, "*_create_group_orders_tables.sql")
	if !strings.Contains(content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_group_order_vendor") {
		t.Error("group order participants must be unique per vendor")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
