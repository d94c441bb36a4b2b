package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/rentdesk/backend/internal/application/leasing"
)

// ContractHandler handles contract-related API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *leasingapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *leasingapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// NotificationConfigRequest is the reminder configuration update body
type NotificationConfigRequest struct {
	Enabled             bool     `json:"enabled"`
	TenantRecipients    []string `json:"tenant_recipients" binding:"omitempty,dive,email"`
	GuarantorRecipients []string `json:"guarantor_recipients" binding:"omitempty,dive,email"`
}

// ConfirmDocumentRequest confirms an uploaded contract document
type ConfirmDocumentRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

// InitiateDocumentUploadRequest starts the contract document upload handshake
type InitiateDocumentUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// DocumentURLResponse carries a presigned download URL
type DocumentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create creates a new rental contract. The created event triggers
// installment generation for the full date range.
func (h *ContractHandler) Create(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	var req leasingapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), officeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, contract)
}

// GetByID retrieves a contract by its ID
func (h *ContractHandler) GetByID(c *gin.Context) {
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

	contract, err := h.contractService.GetContract(c.Request.Context(), officeID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// List retrieves a paginated list of contracts for the acting office
func (h *ContractHandler) List(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	filter, ok := bindListFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	page, err := h.contractService.ListContracts(c.Request.Context(), officeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// SetNotificationConfig replaces the contract's reminder configuration
func (h *ContractHandler) SetNotificationConfig(c *gin.Context) {
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

	var req NotificationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.SetNotificationConfig(c.Request.Context(), officeID, contractID, leasingapp.NotificationConfigRequest{
		Enabled:             req.Enabled,
		TenantRecipients:    req.TenantRecipients,
		GuarantorRecipients: req.GuarantorRecipients,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// InitiateDocumentUpload returns a presigned upload URL for the signed
// contract PDF
func (h *ContractHandler) InitiateDocumentUpload(c *gin.Context) {
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

	var req InitiateDocumentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.contractService.InitiateContractPDFUpload(c.Request.Context(), officeID, contractID, req.ContentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmDocument attaches an uploaded document to the contract
func (h *ContractHandler) ConfirmDocument(c *gin.Context) {
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

	var req ConfirmDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.ConfirmContractPDF(c.Request.Context(), officeID, contractID, req.ObjectKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// GetDocumentURL returns a presigned download URL for the attached document
func (h *ContractHandler) GetDocumentURL(c *gin.Context) {
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

	url, expiresAt, err := h.contractService.GetContractPDFURL(c.Request.Context(), officeID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, DocumentURLResponse{URL: url, ExpiresAt: expiresAt})
}
