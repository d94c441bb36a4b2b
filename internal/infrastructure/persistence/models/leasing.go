package models

import (
	"time"

	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate.
// Parties and the notification config are stored as JSONB.
type ContractModel struct {
	OfficeAggregateModel
	PropertyLabel       string                     `gorm:"type:varchar(200);not null"`
	PropertyAddress     string                     `gorm:"type:text"`
	Occupant            leasing.Party              `gorm:"type:jsonb;not null"`
	Owner               leasing.Party              `gorm:"type:jsonb;not null"`
	Guarantor           leasing.OptionalParty      `gorm:"type:jsonb"`
	StartDate           time.Time                  `gorm:"type:date;not null"`
	EndDate             time.Time                  `gorm:"type:date;not null"`
	DueDay              int                        `gorm:"not null;default:1"`
	RentAmount          decimal.Decimal            `gorm:"type:decimal(18,2);not null;default:0"`
	EscalationType      leasing.EscalationType     `gorm:"type:varchar(20);not null;default:'NONE'"`
	EscalationPeriod    int                        `gorm:"not null;default:0"`
	DepositAmount       decimal.Decimal            `gorm:"type:decimal(18,2);not null;default:0"`
	Guarantee           leasing.GuaranteeType      `gorm:"type:varchar(20);not null;default:'NONE'"`
	PDFObjectKey        string                     `gorm:"type:varchar(500)"`
	Notifications       leasing.NotificationConfig `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *leasing.Contract {
	return &leasing.Contract{
		OfficeAggregateRoot: m.officeAggregateRoot(),
		PropertyLabel:       m.PropertyLabel,
		PropertyAddress:     m.PropertyAddress,
		Occupant:            m.Occupant,
		Owner:               m.Owner,
		Guarantor:           m.Guarantor,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		DueDay:              m.DueDay,
		RentAmount:          m.RentAmount,
		Escalation: leasing.EscalationRule{
			Type:         m.EscalationType,
			PeriodMonths: m.EscalationPeriod,
		},
		DepositAmount: m.DepositAmount,
		Guarantee:     m.Guarantee,
		PDFObjectKey:  m.PDFObjectKey,
		Notifications: m.Notifications,
	}
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *leasing.Contract) {
	m.FromDomainOfficeAggregateRoot(c.OfficeAggregateRoot)
	m.PropertyLabel = c.PropertyLabel
	m.PropertyAddress = c.PropertyAddress
	m.Occupant = c.Occupant
	m.Owner = c.Owner
	m.Guarantor = c.Guarantor
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.DueDay = c.DueDay
	m.RentAmount = c.RentAmount
	m.EscalationType = c.Escalation.Type
	m.EscalationPeriod = c.Escalation.PeriodMonths
	m.DepositAmount = c.DepositAmount
	m.Guarantee = c.Guarantee
	m.PDFObjectKey = c.PDFObjectKey
	m.Notifications = c.Notifications
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *leasing.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
