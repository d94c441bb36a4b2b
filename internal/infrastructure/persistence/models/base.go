package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// OfficeAggregateModel provides common persistence fields for office-scoped
// aggregate roots. It extends AggregateModel with the office ID and creator.
type OfficeAggregateModel struct {
	AggregateModel
	OfficeID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainOfficeAggregateRoot populates OfficeAggregateModel from domain OfficeAggregateRoot
func (m *OfficeAggregateModel) FromDomainOfficeAggregateRoot(o shared.OfficeAggregateRoot) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OfficeID = o.OfficeID
	m.CreatedBy = o.CreatedBy
}

// PopulateOfficeAggregateRoot populates a domain OfficeAggregateRoot from persistence model
func (m *OfficeAggregateModel) PopulateOfficeAggregateRoot(o *shared.OfficeAggregateRoot) {
	o.BaseAggregateRoot.BaseEntity.ID = m.ID
	o.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	o.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	o.BaseAggregateRoot.Version = m.Version
	o.OfficeID = m.OfficeID
	o.CreatedBy = m.CreatedBy
}

// officeAggregateRoot builds a domain OfficeAggregateRoot from the model fields
func (m *OfficeAggregateModel) officeAggregateRoot() shared.OfficeAggregateRoot {
	return shared.OfficeAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OfficeID:  m.OfficeID,
		CreatedBy: m.CreatedBy,
	}
}
