package models

import (
	"errors"
	"testing"

	"github.com/bizsuite/erp_backend/utils"
	"gorm.io/gorm"
)

func TestTransientErrorClassification(t *testing.T) {
	transient := []error{
		errors.New("Error 1213: Deadlock found when trying to get lock"),
		errors.New("Error 1205: Lock wait timeout exceeded"),
		errors.New("database is locked"),
		errors.New("database table is locked"),
	}
	for _, err := range transient {
		if !isTransientDbError(err) {
			t.Fatalf("%v not classified as transient", err)
		}
	}

	permanent := []error{
		nil,
		utils.ErrorRecordNotFound,
		utils.ErrorDocumentLocked,
		errors.New("Error 1062: Duplicate entry"),
	}
	for _, err := range permanent {
		if isTransientDbError(err) {
			t.Fatalf("%v wrongly classified as transient", err)
		}
	}
}

// A table nobody migrated stands in for an infrastructure fault: the fetch
// helpers must surface the raw error, not dress it up as a missing record.
type retiredLedgerRow struct {
	ID         int    `gorm:"primary_key"`
	BusinessId string `gorm:"size:64"`
}

func TestFetchErrorsKeepTheirIdentity(t *testing.T) {
	ctx := newTestContext(t, "txrunner_fetch_errors")
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	_, err := utils.FetchModel[retiredLedgerRow](ctx, businessId, 1)
	if err == nil {
		t.Fatal("expected an error for an unmigrated table")
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("infrastructure error masked as not found: %v", err)
	}

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		_, ferr := utils.FetchModelForUpdate[retiredLedgerRow](tx, ctx, businessId, 1)
		return ferr
	})
	if err == nil {
		t.Fatal("expected an error for an unmigrated table")
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("infrastructure error masked as not found: %v", err)
	}

	// A genuine miss still maps to the NotFound sentinel.
	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		_, ferr := utils.FetchModelForUpdate[Product](tx, ctx, businessId, 9999)
		return ferr
	})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("missing row err = %v, want record not found", err)
	}
}
