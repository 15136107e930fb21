package config

import (
	"os"
	"strings"
)

// StrictStockValidation rejects operations that would drive a product's
// on-hand quantity negative. The default (off) preserves legacy behavior:
// negative stock is allowed silently.
//
// Set via env:
// - STRICT_STOCK_VALIDATION=true
func StrictStockValidation() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_STOCK_VALIDATION")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
