package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the leasing domain
const (
	EventTypeContractCreated     = "leasing.contract.created"
	EventTypeContractPDFAttached = "leasing.contract.pdf_attached"
)

// AggregateTypeContract is the aggregate type name used in events
const AggregateTypeContract = "Contract"

// ContractCreatedEvent is published when an operator creates a contract.
// It carries everything the installment generator needs so the handler does
// not have to re-read the aggregate.
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID       `json:"contract_id"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	DueDay     int             `json:"due_day"`
	RentAmount decimal.Decimal `json:"rent_amount"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeContractCreated, AggregateTypeContract, c.ID, c.OfficeID),
		ContractID: c.ID,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		DueDay:     c.DueDay,
		RentAmount: c.RentAmount,
	}
}

// ContractPDFAttachedEvent is published when the signed document is attached
type ContractPDFAttachedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	ObjectKey  string    `json:"object_key"`
}

// NewContractPDFAttachedEvent creates a new ContractPDFAttachedEvent
func NewContractPDFAttachedEvent(c *Contract, objectKey string) *ContractPDFAttachedEvent {
	return &ContractPDFAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeContractPDFAttached, AggregateTypeContract, c.ID, c.OfficeID),
		ContractID: c.ID,
		ObjectKey:  objectKey,
	}
}
