package config

import (
	"context"
	"reflect"
	"strings"

	"github.com/bizsuite/erp_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantGuardPlugin enforces multi-tenant isolation:
//   - queries/updates/deletes are automatically scoped to the request's
//     business_id when the model has a business_id column;
//   - creates are stamped with the request's business_id when the field
//     was left empty.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include business_id manually.
// - Admin/internal bypass is explicit via context flags.
// - A row owned by another tenant is simply invisible; callers see "record
//   not found" rather than a distinct permission error.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	// Query
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantScopeCallback); err != nil {
		return err
	}
	// Row (First/Take)
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantScopeCallback); err != nil {
		return err
	}
	// Update
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantScopeCallback); err != nil {
		return err
	}
	// Delete
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantScopeCallback); err != nil {
		return err
	}
	// Create (stamp, not filter)
	if err := db.Callback().Create().Before("gorm:create").Register("tenant_guard:create", tenantStampCallback); err != nil {
		return err
	}
	return nil
}

func tenantScopeCallback(db *gorm.DB) {
	businessID, ok := guardBusinessId(db)
	if !ok {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasBusinessID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "business_id"},
				Value:  businessID,
			},
		},
	})
}

// tenantStampCallback fills business_id on inserted rows so writes can never
// land in another tenant's partition. Pre-set values are left alone (internal
// ops may create rows on behalf of a tenant).
func tenantStampCallback(db *gorm.DB) {
	businessID, ok := guardBusinessId(db)
	if !ok {
		return
	}

	field := db.Statement.Schema.LookUpField("business_id")
	if field == nil {
		return
	}

	ctx := db.Statement.Context
	switch db.Statement.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
			rv := db.Statement.ReflectValue.Index(i)
			if _, isZero := field.ValueOf(ctx, rv); isZero {
				_ = field.Set(ctx, rv, businessID)
			}
		}
	case reflect.Struct:
		if _, isZero := field.ValueOf(ctx, db.Statement.ReflectValue); isZero {
			_ = field.Set(ctx, db.Statement.ReflectValue, businessID)
		}
	}
}

// guardBusinessId reports the tenant id the statement must be scoped to,
// or ok=false when no scoping applies (bypass, missing context, or the
// model has no business_id column).
func guardBusinessId(db *gorm.DB) (string, bool) {
	if db == nil || db.Statement == nil {
		return "", false
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return "", false
	}
	if shouldBypassTenantScope(ctx) {
		return "", false
	}
	businessID := businessIdFromContext(ctx)
	if businessID == "" {
		return "", false
	}
	if db.Statement.Schema == nil {
		return "", false
	}
	if db.Statement.Schema.LookUpField("business_id") == nil {
		return "", false
	}
	return businessID, true
}

func businessIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyBusinessId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassTenantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipTenantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasBusinessID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasBusinessID(e) {
			return true
		}
	}
	return false
}

func exprHasBusinessID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsBusinessID(v.Column)
	case clause.IN:
		return colIsBusinessID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasBusinessID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasBusinessID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "business_id")
	default:
		return false
	}
}

func colIsBusinessID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "business_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "business_id")
	default:
		return false
	}
}
