// Package office provides multi-office database scoping for GORM.
//
// This package implements automatic office_id filtering to prevent
// cross-office data access at the repository layer. It extracts the office ID
// from the request context and automatically applies WHERE office_id = ?
// conditions to all queries.
//
// Usage:
//
//	db := office.NewOfficeDB(gormDB)
//	scopedDB := db.WithContext(ctx) // automatically applies office filtering
//	scopedDB.Find(&contracts) // WHERE office_id = 'xxx' is auto-added
package office

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// ErrOfficeIDRequired is returned when office_id is required but not found
var ErrOfficeIDRequired = errors.New("office_id is required but not found in context")

// ErrInvalidOfficeID is returned when office_id format is invalid
var ErrInvalidOfficeID = errors.New("invalid office_id format")

// OfficeScope applies office filtering to GORM queries
func OfficeScope(officeID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("office_id = ?", officeID)
	}
}

// OfficeScopeString applies office filtering using string office ID
func OfficeScopeString(officeID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("office_id = ?", officeID)
	}
}

// OfficeDB wraps GORM DB with automatic office scoping
type OfficeDB struct {
	db       *gorm.DB
	required bool
}

// NewOfficeDB creates a new OfficeDB requiring an office ID on every query
func NewOfficeDB(db *gorm.DB) *OfficeDB {
	return &OfficeDB{db: db, required: true}
}

// DB returns the underlying GORM DB without office scoping
// Use with caution - this bypasses office isolation
func (o *OfficeDB) DB() *gorm.DB {
	return o.db
}

// WithContext returns a GORM DB scoped to the office from context.
// It extracts office_id from the context (set by the office middleware)
// and automatically applies the office filter to all queries.
//
// If office_id is not found in context and Required is true, it returns
// a DB that will error on any operation.
func (o *OfficeDB) WithContext(ctx context.Context) *gorm.DB {
	officeID := logger.GetOfficeID(ctx)

	if officeID == "" {
		if o.required {
			db := o.db.WithContext(ctx)
			_ = db.AddError(ErrOfficeIDRequired)
			return db
		}
		return o.db.WithContext(ctx)
	}

	if _, err := uuid.Parse(officeID); err != nil {
		db := o.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidOfficeID)
		return db
	}

	return o.db.WithContext(ctx).Scopes(OfficeScopeString(officeID))
}

// WithOffice returns a GORM DB scoped to a specific office ID.
// Use this when you have the office ID directly rather than from context.
func (o *OfficeDB) WithOffice(officeID uuid.UUID) *gorm.DB {
	if officeID == uuid.Nil {
		if o.required {
			db := o.db
			_ = db.AddError(ErrOfficeIDRequired)
			return db
		}
		return o.db
	}
	return o.db.Scopes(OfficeScope(officeID))
}

// ForOffice creates a GORM DB scoped to both a context and a specific office.
func (o *OfficeDB) ForOffice(ctx context.Context, officeID uuid.UUID) *gorm.DB {
	return o.db.WithContext(ctx).Scopes(OfficeScope(officeID))
}

// Transaction executes a function within a database transaction with office scope
func (o *OfficeDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	officeID := logger.GetOfficeID(ctx)

	if officeID == "" && o.required {
		return ErrOfficeIDRequired
	}

	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if officeID != "" {
			tx = tx.Scopes(OfficeScopeString(officeID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any office scoping.
// WARNING: Use this with extreme caution as it bypasses office isolation.
// This should only be used for system-level operations or migrations.
func (o *OfficeDB) Unscoped() *gorm.DB {
	return o.db
}

// SetRequired changes whether office_id is required
func (o *OfficeDB) SetRequired(required bool) *OfficeDB {
	return &OfficeDB{db: o.db, required: required}
}
