package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/office"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInstallmentRepository implements InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByIDForOffice finds an installment by ID within an office
func (r *GormInstallmentRepository) FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*billing.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Scopes(office.OfficeScope(officeID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKeyForOffice finds an installment by its composite natural key
func (r *GormInstallmentRepository) FindByKeyForOffice(ctx context.Context, officeID, contractID uuid.UUID, period billing.Period) (*billing.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Scopes(office.OfficeScope(officeID)).
		Where("natural_key = ?", billing.InstallmentKey(contractID, period)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContract lists installments of a contract ordered by period ascending
func (r *GormInstallmentRepository) FindByContract(ctx context.Context, officeID, contractID uuid.UUID) ([]billing.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Scopes(office.OfficeScope(officeID)).
		Where("contract_id = ?", contractID).
		Order("period_key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(rows), nil
}

// FindAllForOffice lists installments across all contracts of an office,
// optionally filtered by status
func (r *GormInstallmentRepository) FindAllForOffice(ctx context.Context, officeID uuid.UUID, status *billing.InstallmentStatus, filter shared.Filter) ([]billing.Installment, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Scopes(office.OfficeScope(officeID))
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	query = applyFilter(query, filter, "due_date DESC")

	var rows []models.InstallmentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(rows), nil
}

// CreateIfAbsent conditionally inserts an installment keyed by its natural key.
// The unique index on natural_key makes concurrent generation race-free: the
// loser of the race simply inserts zero rows.
func (r *GormInstallmentRepository) CreateIfAbsent(ctx context.Context, installment *billing.Installment) (bool, error) {
	model := models.InstallmentModelFromDomain(installment)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "natural_key"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Save creates or updates an installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *billing.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInstallmentRepository) SaveWithLock(ctx context.Context, installment *billing.Installment) error {
	result := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("id = ? AND version = ?", installment.ID, installment.Version-1).
		Updates(installmentLockUpdates(installment))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindDueBetweenForOffice lists installments of an office whose due date falls
// inside the inclusive [from, to] day range
func (r *GormInstallmentRepository) FindDueBetweenForOffice(ctx context.Context, officeID uuid.UUID, from, to time.Time) ([]billing.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Scopes(office.OfficeScope(officeID)).
		Where("due_date >= ? AND due_date <= ?", from, to).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(rows), nil
}

// FindDateDerivedPage scans installments in date-derived statuses across all
// offices, ordered by id, returning at most limit rows after afterID
func (r *GormInstallmentRepository) FindDateDerivedPage(ctx context.Context, afterID uuid.UUID, limit int) ([]billing.Installment, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", billing.DateDerivedStatuses()).
		Order("id ASC").
		Limit(limit)
	if afterID != uuid.Nil {
		query = query.Where("id > ?", afterID)
	}

	var rows []models.InstallmentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(rows), nil
}

// UpdateStatuses persists a batch of status flips in one transaction
func (r *GormInstallmentRepository) UpdateStatuses(ctx context.Context, updates []billing.StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			if err := tx.Model(&models.InstallmentModel{}).
				Where("id = ?", update.ID).
				Updates(map[string]interface{}{
					"status":     update.Status,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// installmentLockUpdates builds the column set written by version-checked saves
func installmentLockUpdates(installment *billing.Installment) map[string]interface{} {
	return map[string]interface{}{
		"status":                  installment.Status,
		"total_amount":            installment.TotalAmount,
		"paid_amount":             installment.PaidAmount,
		"due_amount":              installment.DueAmount,
		"items":                   installment.Items,
		"notification_override":   installment.NotificationOverride,
		"has_unverified_payments": installment.HasUnverifiedPayments,
		"version":                 installment.Version,
		"updated_at":              installment.UpdatedAt,
	}
}

// toDomainInstallments converts persistence rows to domain aggregates
func toDomainInstallments(rows []models.InstallmentModel) []billing.Installment {
	installments := make([]billing.Installment, len(rows))
	for i := range rows {
		installments[i] = *rows[i].ToDomain()
	}
	return installments
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ billing.InstallmentRepository = (*GormInstallmentRepository)(nil)
