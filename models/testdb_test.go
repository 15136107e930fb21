package models

import (
	"context"
	"testing"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
)

// newTestContext opens a fresh in-memory database, migrates it, creates a
// tenant and returns a context scoped to that tenant. dbName must be unique
// per test so tests do not share state.
func newTestContext(t *testing.T, dbName string) context.Context {
	t.Helper()
	if err := config.ConnectTestDatabase(dbName); err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	if err := MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return newTenantContext(t, "Test Business")
}

// newTenantContext creates another tenant on the already-open test database.
func newTenantContext(t *testing.T, name string) context.Context {
	t.Helper()
	business, err := CreateBusiness(context.Background(), &NewBusiness{Name: name})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	ctx := utils.SetBusinessIdInContext(context.Background(), business.ID.String())
	ctx = utils.SetUserNameInContext(ctx, "tester")
	return ctx
}

func testDate() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}
