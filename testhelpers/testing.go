package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"elafcatalog/internal/models"
	"elafcatalog/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"
)

// TestDB holds the database connection for integration tests
type TestDB struct {
	Pool *pgxpool.Pool
}

// SetupTestDB connects to TEST_DATABASE_URL and creates the schema. The test
// is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, connString, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return &TestDB{Pool: pool}
}

// NewTenant returns a fresh tenant id whose rows are removed when the test ends.
func (db *TestDB) NewTenant(t *testing.T) uuid.UUID {
	t.Helper()

	tenantID := uuid.New()
	t.Cleanup(func() {
		_, err := db.Pool.Exec(context.Background(), "DELETE FROM category_records WHERE tenant_id = $1", tenantID)
		if err != nil {
			t.Errorf("Failed to clean up tenant %s: %v", tenantID, err)
		}
	})
	return tenantID
}

// SampleRecords is a small export with nesting, a missing language and an
// orphan whose parent is absent.
func SampleRecords() []models.FlatRecord {
	return []models.FlatRecord{
		{ID: "fresh-food", Name: &models.LocalizedName{Ar: models.StringPtr("أغذية طازجة"), En: models.StringPtr("Fresh Food")}},
		{ID: "fruits", Name: &models.LocalizedName{Ar: models.StringPtr("فواكه"), En: models.StringPtr("Fruits")}, ParentID: models.StringPtr("FRESH_FOOD")},
		{ID: "apple", Name: &models.LocalizedName{Ar: models.StringPtr("تفاح")}, ParentID: models.StringPtr("fruits")},
		{ID: "orphan", Name: &models.LocalizedName{En: models.StringPtr("Orphan")}, ParentID: models.StringPtr("missing")},
	}
}
