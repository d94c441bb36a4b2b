package billing

import (
	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the billing domain
const (
	EventTypeInstallmentGenerated     = "billing.installment.generated"
	EventTypeInstallmentPaid          = "billing.installment.paid"
	EventTypeInstallmentPartiallyPaid = "billing.installment.partially_paid"
)

// AggregateTypeInstallment is the aggregate type name used in events
const AggregateTypeInstallment = "Installment"

// InstallmentGeneratedEvent is published when a period is materialized
type InstallmentGeneratedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	PeriodKey  string    `json:"period"`
}

// NewInstallmentGeneratedEvent creates a new InstallmentGeneratedEvent
func NewInstallmentGeneratedEvent(i *Installment) *InstallmentGeneratedEvent {
	return &InstallmentGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeInstallmentGenerated, AggregateTypeInstallment, i.ID, i.OfficeID),
		ContractID: i.ContractID,
		PeriodKey:  i.PeriodKey,
	}
}

// InstallmentPaidEvent is published when nothing remains due
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID       `json:"contract_id"`
	PeriodKey  string          `json:"period"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(i *Installment) *InstallmentPaidEvent {
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeInstallmentPaid, AggregateTypeInstallment, i.ID, i.OfficeID),
		ContractID: i.ContractID,
		PeriodKey:  i.PeriodKey,
		PaidAmount: i.PaidAmount,
	}
}

// InstallmentPartiallyPaidEvent is published when a payment leaves a balance
type InstallmentPartiallyPaidEvent struct {
	shared.BaseDomainEvent
	ContractID    uuid.UUID       `json:"contract_id"`
	PeriodKey     string          `json:"period"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	DueAmount     decimal.Decimal `json:"due_amount"`
}

// NewInstallmentPartiallyPaidEvent creates a new InstallmentPartiallyPaidEvent
func NewInstallmentPartiallyPaidEvent(i *Installment, paymentAmount decimal.Decimal) *InstallmentPartiallyPaidEvent {
	return &InstallmentPartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeInstallmentPartiallyPaid, AggregateTypeInstallment, i.ID, i.OfficeID),
		ContractID:    i.ContractID,
		PeriodKey:     i.PeriodKey,
		PaymentAmount: paymentAmount,
		DueAmount:     i.DueAmount,
	}
}
