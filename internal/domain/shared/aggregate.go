package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `json:"version" gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// OfficeAggregateRoot extends BaseAggregateRoot with multi-office (tenant) support.
// Every billing record belongs to exactly one rental-management office.
type OfficeAggregateRoot struct {
	BaseAggregateRoot
	OfficeID  uuid.UUID  `json:"office_id" gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid;index"` // Operator who created this record
}

// NewOfficeAggregateRoot creates a new office-scoped aggregate root
func NewOfficeAggregateRoot(officeID uuid.UUID) OfficeAggregateRoot {
	return OfficeAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OfficeID:          officeID,
	}
}

// NewOfficeAggregateRootWithCreator creates a new office-scoped aggregate root with creator info
func NewOfficeAggregateRootWithCreator(officeID, createdBy uuid.UUID) OfficeAggregateRoot {
	return OfficeAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OfficeID:          officeID,
		CreatedBy:         &createdBy,
	}
}

// SetCreatedBy sets the creator operator ID
func (t *OfficeAggregateRoot) SetCreatedBy(operatorID uuid.UUID) {
	t.CreatedBy = &operatorID
}

// GetCreatedBy returns the creator operator ID
func (t *OfficeAggregateRoot) GetCreatedBy() *uuid.UUID {
	return t.CreatedBy
}
