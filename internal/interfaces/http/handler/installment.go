package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InstallmentHandler handles installment lifecycle API endpoints
type InstallmentHandler struct {
	BaseHandler
	installmentService *billingapp.InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installmentService *billingapp.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{
		installmentService: installmentService,
	}
}

// UpsertLineItemRequest adds or updates one line item on an installment
type UpsertLineItemRequest struct {
	ID     *string `json:"id" binding:"omitempty,uuid"`
	Type   string  `json:"type" binding:"required,oneof=RENT EXPENSES BREAKAGE SERVICES LATE_FEE ADJUSTMENT DISCOUNT OTHER"`
	Label  string  `json:"label" binding:"required,max=200"`
	Amount float64 `json:"amount" binding:"required"`
}

// AddLateFeeRequest applies a punitive interest charge
type AddLateFeeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Label  string  `json:"label" binding:"max=200"`
}

// SetAgreementRequest toggles the manual payment-agreement override
type SetAgreementRequest struct {
	InAgreement *bool `json:"in_agreement" binding:"required"`
}

// SetNotificationOverrideRequest sets the per-installment reminder override.
// A null enabled value restores inheritance from the contract.
type SetNotificationOverrideRequest struct {
	Enabled *bool `json:"enabled"`
}

// Generate materializes the monthly installments of a contract. Re-running
// is idempotent: existing periods are skipped, never overwritten.
func (h *InstallmentHandler) Generate(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	result, err := h.installmentService.GenerateForContract(c.Request.Context(), officeID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID retrieves an installment by its ID
func (h *InstallmentHandler) GetByID(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	installment, err := h.installmentService.GetInstallment(c.Request.Context(), officeID, installmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// ListByContract retrieves all installments of one contract ordered by period
func (h *InstallmentHandler) ListByContract(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	installments, err := h.installmentService.ListByContract(c.Request.Context(), officeID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installments)
}

// List retrieves a paginated installment listing for the acting office,
// optionally filtered by status
func (h *InstallmentHandler) List(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	filter, ok := bindListFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	var status *billing.InstallmentStatus
	if raw := c.Query("status"); raw != "" {
		s := billing.InstallmentStatus(raw)
		if !s.IsValid() {
			h.BadRequest(c, "Invalid installment status")
			return
		}
		status = &s
	}

	installments, err := h.installmentService.ListForOffice(c.Request.Context(), officeID, status, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installments)
}

// UpsertLineItem adds or updates a charge on the installment and re-derives
// its totals and status
func (h *InstallmentHandler) UpsertLineItem(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	var req UpsertLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := billing.LineItemInput{
		Type:   billing.LineItemType(req.Type),
		Label:  req.Label,
		Amount: decimal.NewFromFloat(req.Amount),
	}
	if req.ID != nil {
		itemID, err := uuid.Parse(*req.ID)
		if err != nil {
			h.BadRequest(c, "Invalid line item ID format")
			return
		}
		input.ID = &itemID
	}

	installment, err := h.installmentService.UpsertLineItem(c.Request.Context(), officeID, installmentID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// RemoveLineItem deletes a charge from the installment. The seeded rent item
// is protected and cannot be removed.
func (h *InstallmentHandler) RemoveLineItem(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	installment, err := h.installmentService.RemoveLineItem(c.Request.Context(), officeID, installmentID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// AddLateFee applies a punitive interest charge to the installment
func (h *InstallmentHandler) AddLateFee(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	var req AddLateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	installment, err := h.installmentService.AddLateFee(c.Request.Context(), officeID, installmentID,
		decimal.NewFromFloat(req.Amount), req.Label)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// SetAgreement toggles the manual IN_AGREEMENT override. Clearing it
// re-derives the status from payments and dates.
func (h *InstallmentHandler) SetAgreement(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	var req SetAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	installment, err := h.installmentService.SetAgreement(c.Request.Context(), officeID, installmentID, *req.InAgreement)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// SetNotificationOverride sets or clears the per-installment reminder override
func (h *InstallmentHandler) SetNotificationOverride(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	var req SetNotificationOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	installment, err := h.installmentService.SetNotificationOverride(c.Request.Context(), officeID, installmentID, req.Enabled)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}
