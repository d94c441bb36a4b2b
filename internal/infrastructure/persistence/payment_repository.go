package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/office"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// SaveWithInstallment atomically inserts the payment and persists the mutated
// installment totals in one transaction. The installment write is
// version-checked so a concurrent recording rolls the whole transaction back
// instead of losing the other update.
func (r *GormPaymentRepository) SaveWithInstallment(ctx context.Context, payment *billing.Payment, installment *billing.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paymentModel := models.PaymentModelFromDomain(payment)
		if err := tx.Create(paymentModel).Error; err != nil {
			return err
		}

		result := tx.Model(&models.InstallmentModel{}).
			Where("id = ? AND version = ?", installment.ID, installment.Version-1).
			Updates(installmentLockUpdates(installment))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// FindByIDForOffice finds a payment by ID within an office
func (r *GormPaymentRepository) FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
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

// Save updates a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByInstallment lists payments recorded against one installment
func (r *GormPaymentRepository) FindByInstallment(ctx context.Context, officeID, installmentID uuid.UUID) ([]billing.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(office.OfficeScope(officeID)).
		Where("installment_id = ?", installmentID).
		Order("paid_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// FindAllForOffice lists payments across an office
func (r *GormPaymentRepository) FindAllForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	var rows []models.PaymentModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.PaymentModel{}).Scopes(office.OfficeScope(officeID)),
		filter,
		"paid_at DESC",
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// toDomainPayments converts persistence rows to domain aggregates
func toDomainPayments(rows []models.PaymentModel) []billing.Payment {
	payments := make([]billing.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
