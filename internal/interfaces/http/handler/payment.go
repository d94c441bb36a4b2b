package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment recording API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RecordPaymentRequest registers money received against an installment
type RecordPaymentRequest struct {
	InstallmentID string     `json:"installment_id" binding:"required,uuid"`
	Amount        float64    `json:"amount" binding:"required,gt=0"`
	Method        string     `json:"method" binding:"required,oneof=CASH TRANSFER CARD OTHER"`
	PaidAt        *time.Time `json:"paid_at"`
	Note          string     `json:"note" binding:"max=500"`
}

// InitiateReceiptUploadRequest starts the receipt image upload handshake
type InitiateReceiptUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ConfirmReceiptRequest attaches an uploaded receipt to a payment
type ConfirmReceiptRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

// ReceiptURLResponse carries a presigned receipt download URL
type ReceiptURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Record registers a payment against an installment. The payment and the
// mutated installment totals persist atomically; overpayment is accepted.
func (h *PaymentHandler) Record(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	installmentID, err := uuid.Parse(req.InstallmentID)
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	appReq := billingapp.RecordPaymentRequest{
		InstallmentID: installmentID,
		Amount:        decimal.NewFromFloat(req.Amount),
		Method:        billing.PaymentMethod(req.Method),
		PaidAt:        paidAt,
		Note:          req.Note,
	}

	// The collector is recorded for audit when the operator is authenticated
	if operatorID, err := getOperatorID(c); err == nil {
		appReq.CollectedBy = &operatorID
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), officeID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// MarkPaidWithoutReceipt settles the remaining balance of an installment in
// one cash payment flagged as unverified
func (h *PaymentHandler) MarkPaidWithoutReceipt(c *gin.Context) {
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

	var collectedBy *uuid.UUID
	if operatorID, err := getOperatorID(c); err == nil {
		collectedBy = &operatorID
	}

	payment, err := h.paymentService.MarkPaidWithoutReceipt(c.Request.Context(), officeID, installmentID, collectedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// ListByInstallment retrieves the payments applied to one installment
func (h *PaymentHandler) ListByInstallment(c *gin.Context) {
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

	payments, err := h.paymentService.ListByInstallment(c.Request.Context(), officeID, installmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// List retrieves a paginated payment listing for the acting office
func (h *PaymentHandler) List(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	filter, ok := bindListFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListForOffice(c.Request.Context(), officeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// InitiateReceiptUpload returns a presigned upload URL for a receipt image
func (h *PaymentHandler) InitiateReceiptUpload(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req InitiateReceiptUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.InitiateReceiptUpload(c.Request.Context(), officeID, paymentID, req.ContentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmReceipt attaches an uploaded receipt image to the payment
func (h *PaymentHandler) ConfirmReceipt(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req ConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.ConfirmReceipt(c.Request.Context(), officeID, paymentID, req.ObjectKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// GetReceiptURL returns a presigned download URL for the payment's receipt
func (h *PaymentHandler) GetReceiptURL(c *gin.Context) {
	officeID, err := getOfficeID(c)
	if err != nil {
		h.BadRequest(c, "Invalid office ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	url, expiresAt, err := h.paymentService.GetReceiptURL(c.Request.Context(), officeID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ReceiptURLResponse{URL: url, ExpiresAt: expiresAt})
}
