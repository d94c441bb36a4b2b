package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how money was received
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment records money received against one installment.
// It lives in the office-scoped payments collection with contract and
// installment back-references; the per-installment listing is a query view
// over the same rows.
type Payment struct {
	shared.OfficeAggregateRoot
	InstallmentID    uuid.UUID       `json:"installment_id"`
	ContractID       uuid.UUID       `json:"contract_id"`
	Amount           decimal.Decimal `json:"amount"`
	Method           PaymentMethod   `json:"method"`
	PaidAt           time.Time       `json:"paid_at"`
	ReceiptObjectKey string          `json:"receipt_object_key,omitempty"`
	Note             string          `json:"note,omitempty"`
	CollectedBy      *uuid.UUID      `json:"collected_by,omitempty"`
	WithoutReceipt   bool            `json:"without_receipt"`
}

// NewPayment creates a payment record after validating the amount and method
func NewPayment(
	officeID uuid.UUID,
	installmentID uuid.UUID,
	contractID uuid.UUID,
	amount decimal.Decimal,
	method PaymentMethod,
	paidAt time.Time,
	withoutReceipt bool,
) (*Payment, error) {
	if installmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT", "Installment ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		OfficeAggregateRoot: shared.NewOfficeAggregateRoot(officeID),
		InstallmentID:       installmentID,
		ContractID:          contractID,
		Amount:              amount,
		Method:              method,
		PaidAt:              paidAt,
		WithoutReceipt:      withoutReceipt,
	}, nil
}

// AttachReceipt records the object-storage key of the receipt image
func (p *Payment) AttachReceipt(objectKey string) error {
	if objectKey == "" {
		return shared.NewDomainError("INVALID_OBJECT_KEY", "Receipt object key cannot be empty")
	}
	p.ReceiptObjectKey = objectKey
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
