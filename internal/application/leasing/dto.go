package leasing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyInput carries the contact data of a contract participant
type PartyInput struct {
	Name       string `json:"name" binding:"required"`
	NationalID string `json:"national_id"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
}

// CreateContractRequest carries the operator input for contract creation
type CreateContractRequest struct {
	PropertyLabel   string          `json:"property_label" binding:"required"`
	PropertyAddress string          `json:"property_address"`
	Occupant        PartyInput      `json:"occupant" binding:"required"`
	Owner           PartyInput      `json:"owner" binding:"required"`
	Guarantor       *PartyInput     `json:"guarantor"`
	StartDate       time.Time       `json:"start_date" binding:"required"`
	EndDate         time.Time       `json:"end_date" binding:"required"`
	DueDay          int             `json:"due_day"`
	RentAmount      decimal.Decimal `json:"rent_amount" binding:"required"`
	EscalationType  string          `json:"escalation_type"`
	EscalationMonths int            `json:"escalation_months"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	GuaranteeType   string          `json:"guarantee_type"`
}

// NotificationConfigRequest carries the reminder configuration update
type NotificationConfigRequest struct {
	Enabled             bool     `json:"enabled"`
	TenantRecipients    []string `json:"tenant_recipients"`
	GuarantorRecipients []string `json:"guarantor_recipients"`
}

// InitiatePDFUploadResponse is the presigned upload handshake for the signed
// contract document
type InitiatePDFUploadResponse struct {
	ObjectKey string    `json:"object_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
