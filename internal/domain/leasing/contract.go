package leasing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GuaranteeType represents the kind of guarantee backing a contract
type GuaranteeType string

const (
	GuaranteeTypeNone      GuaranteeType = "NONE"
	GuaranteeTypeProperty  GuaranteeType = "PROPERTY"
	GuaranteeTypeSalary    GuaranteeType = "SALARY"
	GuaranteeTypeInsurance GuaranteeType = "INSURANCE"
	GuaranteeTypeOther     GuaranteeType = "OTHER"
)

// IsValid checks if the guarantee type is valid
func (g GuaranteeType) IsValid() bool {
	switch g {
	case GuaranteeTypeNone, GuaranteeTypeProperty, GuaranteeTypeSalary,
		GuaranteeTypeInsurance, GuaranteeTypeOther:
		return true
	}
	return false
}

// EscalationType represents how the rent amount is updated over time
type EscalationType string

const (
	EscalationTypeNone         EscalationType = "NONE"
	EscalationTypeFixedPercent EscalationType = "FIXED_PERCENT"
	EscalationTypeIndex        EscalationType = "INDEX"
)

// IsValid checks if the escalation type is valid
func (e EscalationType) IsValid() bool {
	switch e {
	case EscalationTypeNone, EscalationTypeFixedPercent, EscalationTypeIndex:
		return true
	}
	return false
}

// EscalationRule describes the rent update rule of a contract
type EscalationRule struct {
	Type         EscalationType `json:"type"`
	PeriodMonths int            `json:"period_months"`
}

// Party is a contract participant (occupant, owner or guarantor)
// Stored as JSONB inside the contract aggregate.
type Party struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (p Party) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage
func (p *Party) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// OptionalParty is a nullable Party stored as JSONB (e.g. the guarantor)
type OptionalParty struct {
	Party
	Present bool `json:"present"`
}

// Value implements driver.Valuer for JSONB storage
func (p OptionalParty) Value() (driver.Value, error) {
	if !p.Present {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage
func (p *OptionalParty) Scan(value interface{}) error {
	if value == nil {
		*p = OptionalParty{}
		return nil
	}
	return scanJSON(value, p)
}

// NotificationConfig holds the reminder configuration of a contract.
// Recipient lists are resolved at contract creation/update time by the UI
// layer; the engine only reads them.
type NotificationConfig struct {
	Enabled             bool     `json:"enabled"`
	TenantRecipients    []string `json:"tenant_recipients,omitempty"`
	GuarantorRecipients []string `json:"guarantor_recipients,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (n NotificationConfig) Value() (driver.Value, error) {
	return json.Marshal(n)
}

// Scan implements sql.Scanner for JSONB storage
func (n *NotificationConfig) Scan(value interface{}) error {
	if value == nil {
		*n = NotificationConfig{}
		return nil
	}
	return scanJSON(value, n)
}

func scanJSON(value interface{}, dst interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSON column: unsupported type")
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dst)
}

// Contract represents a lease agreement aggregate root.
// It is the unit of billing configuration: the installment engine derives
// the monthly schedule from its date range, due day and rent amount.
type Contract struct {
	shared.OfficeAggregateRoot
	PropertyLabel   string             `json:"property_label"`
	PropertyAddress string             `json:"property_address"`
	Occupant        Party              `json:"occupant"`
	Owner           Party              `json:"owner"`
	Guarantor       OptionalParty      `json:"guarantor"`
	StartDate       time.Time          `json:"start_date"` // calendar date, no time component
	EndDate         time.Time          `json:"end_date"`   // calendar date, no time component
	DueDay          int                `json:"due_day"`    // 1-31, clamped per month at billing time
	RentAmount      decimal.Decimal    `json:"rent_amount"`
	Escalation      EscalationRule     `json:"escalation"`
	DepositAmount   decimal.Decimal    `json:"deposit_amount"`
	Guarantee       GuaranteeType      `json:"guarantee"`
	PDFObjectKey    string             `json:"pdf_object_key,omitempty"`
	Notifications   NotificationConfig `json:"notifications"`
}

// NewContract creates a new contract aggregate.
// dueDay outside 1-31 is clamped (missing/invalid due days bill on the 1st).
func NewContract(
	officeID uuid.UUID,
	propertyLabel string,
	propertyAddress string,
	occupant Party,
	owner Party,
	guarantor *Party,
	startDate time.Time,
	endDate time.Time,
	dueDay int,
	rentAmount decimal.Decimal,
	escalation EscalationRule,
	depositAmount decimal.Decimal,
	guarantee GuaranteeType,
) (*Contract, error) {
	if propertyLabel == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property label cannot be empty")
	}
	if occupant.Name == "" {
		return nil, shared.NewDomainError("INVALID_OCCUPANT", "Occupant name cannot be empty")
	}
	if owner.Name == "" {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner name cannot be empty")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewDomainError("MISSING_DATES", "Start and end dates are required")
	}
	if endDate.Before(startDate) {
		return nil, shared.ErrInvalidDateRange
	}
	if rentAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT_AMOUNT", "Rent amount cannot be negative")
	}
	if guarantee == "" {
		guarantee = GuaranteeTypeNone
	}
	if !guarantee.IsValid() {
		return nil, shared.NewDomainError("INVALID_GUARANTEE", "Guarantee type is not valid")
	}
	if escalation.Type == "" {
		escalation.Type = EscalationTypeNone
	}
	if !escalation.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_ESCALATION", "Escalation type is not valid")
	}
	if dueDay < 1 {
		dueDay = 1
	}
	if dueDay > 31 {
		dueDay = 31
	}

	c := &Contract{
		OfficeAggregateRoot: shared.NewOfficeAggregateRoot(officeID),
		PropertyLabel:       propertyLabel,
		PropertyAddress:     propertyAddress,
		Occupant:            occupant,
		Owner:               owner,
		StartDate:           truncateToDate(startDate),
		EndDate:             truncateToDate(endDate),
		DueDay:              dueDay,
		RentAmount:          rentAmount,
		Escalation:          escalation,
		DepositAmount:       depositAmount,
		Guarantee:           guarantee,
		Notifications:       NotificationConfig{Enabled: true},
	}
	if guarantor != nil {
		c.Guarantor = OptionalParty{Party: *guarantor, Present: true}
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// truncateToDate drops the time-of-day component
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AttachPDF records the object-storage key of the signed contract document
func (c *Contract) AttachPDF(objectKey string) error {
	if objectKey == "" {
		return shared.NewDomainError("INVALID_OBJECT_KEY", "PDF object key cannot be empty")
	}
	c.PDFObjectKey = objectKey
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractPDFAttachedEvent(c, objectKey))
	return nil
}

// SetNotificationConfig replaces the reminder configuration
func (c *Contract) SetNotificationConfig(cfg NotificationConfig) {
	c.Notifications = cfg
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// HasGuarantor returns true if the contract names a guarantor
func (c *Contract) HasGuarantor() bool {
	return c.Guarantor.Present
}

// NotificationsEnabled returns true if reminders are enabled for the contract
func (c *Contract) NotificationsEnabled() bool {
	return c.Notifications.Enabled
}
