package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InstallmentKey builds the composite natural key identifying one billable
// month of a contract, e.g. "9f1c...__2024-03". Generation is idempotent on
// this key: an existing document is never overwritten.
func InstallmentKey(contractID uuid.UUID, period Period) string {
	return fmt.Sprintf("%s__%s", contractID, period.Key())
}

// Installment represents one month's billable period of a contract.
// Totals are derived: TotalAmount is the sum of line items, DueAmount is
// TotalAmount minus PaidAmount floored at zero. Stored status is a cache of
// the date-derived classification until a payment or an agreement override
// takes precedence.
type Installment struct {
	shared.OfficeAggregateRoot
	ContractID            uuid.UUID         `json:"contract_id"`
	PeriodKey             string            `json:"period"` // "YYYY-MM", immutable after creation
	NaturalKey            string            `json:"natural_key"`
	DueDate               time.Time         `json:"due_date"`
	Status                InstallmentStatus `json:"status"`
	TotalAmount           decimal.Decimal   `json:"total_amount"`
	PaidAmount            decimal.Decimal   `json:"paid_amount"`
	DueAmount             decimal.Decimal   `json:"due_amount"`
	Items                 LineItems         `json:"items"`
	NotificationOverride  *bool             `json:"notification_override,omitempty"` // nil = inherit contract config
	HasUnverifiedPayments bool              `json:"has_unverified_payments"`         // sticky audit flag
}

// NewInstallment materializes the installment for one period of a contract,
// seeded with the rent line item and a date-derived status.
func NewInstallment(
	officeID uuid.UUID,
	contractID uuid.UUID,
	period Period,
	dueDay int,
	rentAmount decimal.Decimal,
	today time.Time,
) (*Installment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if rentAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT_AMOUNT", "Rent amount cannot be negative")
	}

	dueDate := period.DueDate(dueDay)

	inst := &Installment{
		OfficeAggregateRoot: shared.NewOfficeAggregateRoot(officeID),
		ContractID:          contractID,
		PeriodKey:           period.Key(),
		NaturalKey:          InstallmentKey(contractID, period),
		DueDate:             dueDate,
		Status:              ClassifyDueDate(dueDate, today),
		TotalAmount:         rentAmount,
		PaidAmount:          decimal.Zero,
		DueAmount:           rentAmount,
		Items: LineItems{{
			ID:        uuid.New(),
			Type:      LineItemTypeRent,
			Label:     "Alquiler " + period.Key(),
			Amount:    rentAmount,
			CreatedAt: time.Now(),
		}},
	}

	inst.AddDomainEvent(NewInstallmentGeneratedEvent(inst))

	return inst, nil
}

// Period returns the parsed billing period
func (i *Installment) Period() Period {
	p, _ := ParsePeriod(i.PeriodKey)
	return p
}

// LineItemInput carries user input for a line item upsert
type LineItemInput struct {
	ID     *uuid.UUID
	Type   LineItemType
	Label  string
	Amount decimal.Decimal
}

// UpsertLineItem adds or updates a line item and re-derives totals.
// Discounts passed positive are stored negative; all other types must be
// strictly positive. The seeded rent item may be updated by id but its type
// cannot change, and no second rent item can be created.
func (i *Installment) UpsertLineItem(input LineItemInput, today time.Time) error {
	if input.Label == "" {
		return shared.NewDomainError("INVALID_LABEL", "Line item label cannot be empty")
	}
	if !input.Type.IsValid() {
		return shared.NewDomainError("INVALID_ITEM_TYPE", fmt.Sprintf("Line item type %q is not valid", input.Type))
	}
	if input.Amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Line item amount cannot be zero")
	}

	amount := input.Amount
	if input.Type == LineItemTypeDiscount {
		// discounts are stored negative regardless of the sign the caller used
		if amount.IsPositive() {
			amount = amount.Neg()
		}
	} else if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Only discount items may be negative")
	}

	if input.ID != nil {
		idx := i.Items.find(*input.ID)
		if idx < 0 {
			return shared.ErrNotFound
		}
		existing := &i.Items[idx]
		if existing.IsRent() && input.Type != LineItemTypeRent {
			return shared.ErrRentItemProtected
		}
		if !existing.IsRent() && input.Type == LineItemTypeRent {
			return shared.ErrRentItemProtected
		}
		existing.Type = input.Type
		existing.Label = input.Label
		existing.Amount = amount
	} else {
		if input.Type == LineItemTypeRent {
			return shared.ErrRentItemProtected
		}
		i.Items = append(i.Items, LineItem{
			ID:        uuid.New(),
			Type:      input.Type,
			Label:     input.Label,
			Amount:    amount,
			CreatedAt: time.Now(),
		})
	}

	i.recomputeTotals(today)
	return nil
}

// RemoveLineItem deletes a user-managed item and re-derives totals.
// The seeded rent item cannot be deleted.
func (i *Installment) RemoveLineItem(itemID uuid.UUID, today time.Time) error {
	idx := i.Items.find(itemID)
	if idx < 0 {
		return shared.ErrNotFound
	}
	if i.Items[idx].IsRent() {
		return shared.ErrRentItemProtected
	}

	i.Items = append(i.Items[:idx], i.Items[idx+1:]...)
	i.recomputeTotals(today)
	return nil
}

// AddLateFee appends a punitive-interest item. The amount must be positive.
func (i *Installment) AddLateFee(amount decimal.Decimal, label string, today time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Late fee amount must be positive")
	}
	if label == "" {
		label = "Punitorios"
	}
	return i.UpsertLineItem(LineItemInput{
		Type:   LineItemTypeLateFee,
		Label:  label,
		Amount: amount,
	}, today)
}

// ApplyPayment accrues a payment against the installment and transitions
// status: PAID once nothing is due, PARTIAL otherwise. An unreceipted payment
// sets the sticky HasUnverifiedPayments flag; later receipted payments never
// clear it (lifetime audit flag).
//
// Overpayment is allowed: PaidAmount keeps the true sum while DueAmount is
// clamped at zero; the surplus is visible through CreditAmount.
func (i *Installment) ApplyPayment(amount decimal.Decimal, withoutReceipt bool) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	i.PaidAmount = i.PaidAmount.Add(amount)
	i.DueAmount = decimal.Max(i.TotalAmount.Sub(i.PaidAmount), decimal.Zero)

	if withoutReceipt {
		i.HasUnverifiedPayments = true
	}

	if i.DueAmount.IsZero() {
		i.Status = StatusPaid
		i.AddDomainEvent(NewInstallmentPaidEvent(i))
	} else {
		i.Status = StatusPartial
		i.AddDomainEvent(NewInstallmentPartiallyPaidEvent(i, amount))
	}

	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// OutstandingDue returns the clamped amount still owed
func (i *Installment) OutstandingDue() decimal.Decimal {
	return i.DueAmount
}

// CreditAmount returns the overpaid surplus, zero when none
func (i *Installment) CreditAmount() decimal.Decimal {
	return decimal.Max(i.PaidAmount.Sub(i.TotalAmount), decimal.Zero)
}

// SetAgreement toggles the manual IN_AGREEMENT override. Setting it on a
// fully paid installment is rejected; clearing it re-derives status from
// payments first, then from the due date.
func (i *Installment) SetAgreement(flag bool, today time.Time) error {
	if flag {
		if i.Status == StatusPaid {
			return shared.ErrInvalidState
		}
		i.Status = StatusInAgreement
	} else {
		if i.Status != StatusInAgreement {
			return nil
		}
		i.Status = i.deriveStatus(today)
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// RefreshDateStatus re-derives a date-derived status against the given
// reference day. Payment and agreement states are never overwritten; the
// sweep additionally excludes them before calling. Returns true when the
// stored status changed.
func (i *Installment) RefreshDateStatus(today time.Time) bool {
	if !i.Status.IsDateDerived() {
		return false
	}
	next := ClassifyDueDate(i.DueDate, today)
	if next == i.Status {
		return false
	}
	i.Status = next
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return true
}

// SetNotificationOverride sets the per-installment reminder override.
// nil restores inheritance from the contract config.
func (i *Installment) SetNotificationOverride(enabled *bool) {
	i.NotificationOverride = enabled
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// NotificationsEnabled resolves the effective reminder setting given the
// contract-level default
func (i *Installment) NotificationsEnabled(contractEnabled bool) bool {
	if i.NotificationOverride != nil {
		return *i.NotificationOverride
	}
	return contractEnabled
}

// recomputeTotals re-derives TotalAmount from the items and refreshes
// DueAmount and status. A fully paid installment whose total grew past the
// paid sum reopens to PARTIAL; with no payments the status stays date-driven.
func (i *Installment) recomputeTotals(today time.Time) {
	i.TotalAmount = i.Items.Sum()
	i.DueAmount = decimal.Max(i.TotalAmount.Sub(i.PaidAmount), decimal.Zero)

	switch {
	case i.Status == StatusInAgreement:
		// manual override holds until cleared
	case i.PaidAmount.IsPositive():
		if i.DueAmount.IsZero() {
			i.Status = StatusPaid
		} else {
			i.Status = StatusPartial
		}
	default:
		i.Status = i.deriveStatus(today)
	}

	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// deriveStatus recomputes status from payments first, then the due date
func (i *Installment) deriveStatus(today time.Time) InstallmentStatus {
	if i.PaidAmount.IsPositive() {
		if i.DueAmount.IsZero() {
			return StatusPaid
		}
		return StatusPartial
	}
	return ClassifyDueDate(i.DueDate, today)
}
