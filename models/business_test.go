package models

import (
	"context"
	"errors"
	"testing"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/google/uuid"
)

func TestGetBusinessById(t *testing.T) {
	if err := config.ConnectTestDatabase("business_lookup"); err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	if err := MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	created, err := CreateBusiness(context.Background(), &NewBusiness{Name: "Lookup Co"})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}

	business, err := GetBusinessById(context.Background(), created.ID.String())
	if err != nil {
		t.Fatalf("get business: %v", err)
	}
	if business.Name != "Lookup Co" {
		t.Errorf("expected name Lookup Co, got %q", business.Name)
	}

	if _, err := GetBusinessById(context.Background(), "not-a-uuid"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Errorf("expected not found for a malformed id, got %v", err)
	}
	if _, err := GetBusinessById(context.Background(), uuid.NewString()); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Errorf("expected not found for an unknown id, got %v", err)
	}
}
