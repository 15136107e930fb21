package utils

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/bizsuite/erp_backend/config"
)

var seqMutex sync.Mutex

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// GetSequence returns the next per-tenant sequence number for document type T.
// Redis keeps the hot counter; when it is cold (or absent) the counter is
// seeded from max(sequence_no) in the DB. A uniqueness re-check guards against
// a stale counter after a Redis flush.
func GetSequence[T any](ctx context.Context, businessId string) (int64, error) {
	var model T
	seqMutex.Lock()
	defer seqMutex.Unlock()

	cacheKey := businessId + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// 0 (no redis) or 1 (cold counter): seed from db
		if seqNo <= 1 {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("business_id = ?", businessId).
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// check if sequence number already exists in db
		err = ValidateUnique[T](ctx, businessId, "sequence_no", seqNo, 0)
		if err == nil {
			break
		}
	}
	return seqNo, nil
}
