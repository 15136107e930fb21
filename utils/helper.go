package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bsm/redislock"
	"github.com/ttacon/libphonenumber"
)

// ValidatePhoneNumber parses and checks a phone number for the given region
// (ISO 3166-1 alpha-2, e.g. "US"). Empty numbers are accepted.
func ValidatePhoneNumber(phoneNumber string, countryCode string) error {
	if phoneNumber == "" {
		return nil
	}
	if countryCode == "" {
		countryCode = "US"
	}
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return NewValidationError("invalid phone number")
	}
	if !libphonenumber.IsValidNumber(p) {
		return NewValidationError("invalid phone number")
	}
	return nil
}

// BusinessLock serializes hot write paths per tenant via Redis. It is a
// best-effort contention reducer: correctness comes from row locks inside the
// DB transaction, so a missing Redis client is not an error.
func BusinessLock(ctx context.Context, businessId string, lockType string, moduleName string, functionName string) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	logger := config.GetLogger()
	lockKey := fmt.Sprintf("%s:%s", lockType, businessId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for businessID", businessId, err)
		return nil, fmt.Errorf("could not obtain lock for business %s", businessId)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for businessID", businessId, err)
		return nil, err
	}
	release := func() {
		_ = lock.Release(ctx)
	}
	return release, nil
}
