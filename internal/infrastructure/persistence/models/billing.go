package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InstallmentModel is the persistence model for the Installment aggregate.
// The natural key (contract + period) carries a unique index so concurrent
// generation can rely on conditional inserts.
type InstallmentModel struct {
	OfficeAggregateModel
	ContractID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PeriodKey             string                    `gorm:"type:varchar(7);not null"`
	NaturalKey            string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_installment_natural_key"`
	DueDate               time.Time                 `gorm:"type:date;not null;index"`
	Status                billing.InstallmentStatus `gorm:"type:varchar(20);not null;index"`
	TotalAmount           decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount            decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	DueAmount             decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Items                 billing.LineItems         `gorm:"type:jsonb;not null"`
	NotificationOverride  *bool
	HasUnverifiedPayments bool                      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment aggregate.
func (m *InstallmentModel) ToDomain() *billing.Installment {
	return &billing.Installment{
		OfficeAggregateRoot:   m.officeAggregateRoot(),
		ContractID:            m.ContractID,
		PeriodKey:             m.PeriodKey,
		NaturalKey:            m.NaturalKey,
		DueDate:               m.DueDate,
		Status:                m.Status,
		TotalAmount:           m.TotalAmount,
		PaidAmount:            m.PaidAmount,
		DueAmount:             m.DueAmount,
		Items:                 m.Items,
		NotificationOverride:  m.NotificationOverride,
		HasUnverifiedPayments: m.HasUnverifiedPayments,
	}
}

// FromDomain populates the persistence model from a domain Installment.
func (m *InstallmentModel) FromDomain(i *billing.Installment) {
	m.FromDomainOfficeAggregateRoot(i.OfficeAggregateRoot)
	m.ContractID = i.ContractID
	m.PeriodKey = i.PeriodKey
	m.NaturalKey = i.NaturalKey
	m.DueDate = i.DueDate
	m.Status = i.Status
	m.TotalAmount = i.TotalAmount
	m.PaidAmount = i.PaidAmount
	m.DueAmount = i.DueAmount
	m.Items = i.Items
	m.NotificationOverride = i.NotificationOverride
	m.HasUnverifiedPayments = i.HasUnverifiedPayments
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *billing.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate.
type PaymentModel struct {
	OfficeAggregateModel
	InstallmentID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	ContractID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method           billing.PaymentMethod `gorm:"type:varchar(20);not null;default:'CASH'"`
	PaidAt           time.Time             `gorm:"not null;index"`
	ReceiptObjectKey string                `gorm:"type:varchar(500)"`
	Note             string                `gorm:"type:text"`
	CollectedBy      *uuid.UUID            `gorm:"type:uuid"`
	WithoutReceipt   bool                  `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment aggregate.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		OfficeAggregateRoot: m.officeAggregateRoot(),
		InstallmentID:       m.InstallmentID,
		ContractID:          m.ContractID,
		Amount:              m.Amount,
		Method:              m.Method,
		PaidAt:              m.PaidAt,
		ReceiptObjectKey:    m.ReceiptObjectKey,
		Note:                m.Note,
		CollectedBy:         m.CollectedBy,
		WithoutReceipt:      m.WithoutReceipt,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainOfficeAggregateRoot(p.OfficeAggregateRoot)
	m.InstallmentID = p.InstallmentID
	m.ContractID = p.ContractID
	m.Amount = p.Amount
	m.Method = p.Method
	m.PaidAt = p.PaidAt
	m.ReceiptObjectKey = p.ReceiptObjectKey
	m.Note = p.Note
	m.CollectedBy = p.CollectedBy
	m.WithoutReceipt = p.WithoutReceipt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
