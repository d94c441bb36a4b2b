package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// StatusUpdate is one pending status flip produced by the recompute sweep
type StatusUpdate struct {
	ID     uuid.UUID
	Status InstallmentStatus
}

// InstallmentRepository defines persistence operations for installments
type InstallmentRepository interface {
	// FindByIDForOffice finds an installment by ID scoped to an office
	FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*Installment, error)
	// FindByKeyForOffice finds an installment by its composite natural key
	FindByKeyForOffice(ctx context.Context, officeID, contractID uuid.UUID, period Period) (*Installment, error)
	// FindByContract lists installments of a contract ordered by period ascending
	FindByContract(ctx context.Context, officeID, contractID uuid.UUID) ([]Installment, error)
	// FindAllForOffice lists installments across all contracts of an office,
	// optionally filtered by status (nil means all)
	FindAllForOffice(ctx context.Context, officeID uuid.UUID, status *InstallmentStatus, filter shared.Filter) ([]Installment, error)
	// CreateIfAbsent conditionally inserts an installment keyed by its natural
	// key. Returns false without error when the key already exists, making
	// generation idempotent and safe under concurrent invocation.
	CreateIfAbsent(ctx context.Context, installment *Installment) (bool, error)
	// Save creates or updates an installment
	Save(ctx context.Context, installment *Installment) error
	// SaveWithLock updates an installment with optimistic locking, failing
	// with a concurrency conflict if the stored version moved
	SaveWithLock(ctx context.Context, installment *Installment) error

	// FindDueBetweenForOffice lists installments of an office whose due date
	// falls inside the inclusive [from, to] day range. The reminder scheduler
	// uses it to bound its scan to the active reminder windows.
	FindDueBetweenForOffice(ctx context.Context, officeID uuid.UUID, from, to time.Time) ([]Installment, error)

	// FindDateDerivedPage scans installments in date-derived statuses across
	// ALL offices, ordered by id, returning at most limit rows after afterID.
	// uuid.Nil starts from the beginning. Used by the daily recompute sweep.
	FindDateDerivedPage(ctx context.Context, afterID uuid.UUID, limit int) ([]Installment, error)
	// UpdateStatuses persists a batch of status flips
	UpdateStatuses(ctx context.Context, updates []StatusUpdate) error
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	// SaveWithInstallment atomically inserts the payment and persists the
	// already-mutated installment totals in one transaction with optimistic
	// locking, so concurrent recordings cannot lose updates.
	SaveWithInstallment(ctx context.Context, payment *Payment, installment *Installment) error
	// FindByIDForOffice finds a payment by ID scoped to an office
	FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*Payment, error)
	// Save updates a payment record
	Save(ctx context.Context, payment *Payment) error
	// FindByInstallment lists payments recorded against one installment
	FindByInstallment(ctx context.Context, officeID, installmentID uuid.UUID) ([]Payment, error)
	// FindAllForOffice lists payments across an office
	FindAllForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]Payment, error)
}
