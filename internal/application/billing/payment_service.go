package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordPaymentRequest carries the operator input for a payment recording
type RecordPaymentRequest struct {
	InstallmentID  uuid.UUID
	Amount         decimal.Decimal
	Method         billing.PaymentMethod
	PaidAt         time.Time
	Note           string
	CollectedBy    *uuid.UUID
	WithoutReceipt bool
}

// ReceiptStorage defines the object storage operations the receipt workflow
// needs. Implemented by the infrastructure layer (S3 compatible).
type ReceiptStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading an object
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL generates a presigned URL for downloading an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// receiptImageContentTypes whitelists what a receipt photo may be
var receiptImageContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Receipt upload handshake expiries
const (
	receiptUploadURLExpiry   = 15 * time.Minute
	receiptDownloadURLExpiry = 1 * time.Hour
)

// ReceiptUploadResponse is the presigned upload handshake for a receipt image
type ReceiptUploadResponse struct {
	ObjectKey string    `json:"object_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PaymentService implements payment recording use cases
type PaymentService struct {
	paymentRepo     billing.PaymentRepository
	installmentRepo billing.InstallmentRepository
	receiptStorage  ReceiptStorage
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	installmentRepo billing.InstallmentRepository,
	receiptStorage ReceiptStorage,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		installmentRepo: installmentRepo,
		receiptStorage:  receiptStorage,
		eventPublisher:  eventPublisher,
		logger:          logger,
	}
}

// RecordPayment registers money received against an installment. The payment
// row and the mutated installment totals are persisted in one transaction with
// optimistic locking, so two operators recording at once cannot lose a paid
// amount. Overpayment is accepted; the surplus stays visible as credit.
func (s *PaymentService) RecordPayment(ctx context.Context, officeID uuid.UUID, req RecordPaymentRequest) (*billing.Payment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, req.InstallmentID)
	if err != nil {
		return nil, err
	}

	payment, err := billing.NewPayment(officeID, installment.ID, installment.ContractID,
		req.Amount, req.Method, req.PaidAt, req.WithoutReceipt)
	if err != nil {
		return nil, err
	}
	payment.Note = req.Note
	payment.CollectedBy = req.CollectedBy

	if err := installment.ApplyPayment(req.Amount, req.WithoutReceipt); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SaveWithInstallment(ctx, payment, installment); err != nil {
		s.logger.Error("failed to record payment",
			zap.String("installment_id", installment.ID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, installment.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish payment events",
			zap.String("installment_id", installment.ID.String()),
			zap.Error(err),
		)
	}
	installment.ClearDomainEvents()

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("installment_id", installment.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(installment.Status)),
		zap.Bool("without_receipt", req.WithoutReceipt),
	)

	return payment, nil
}

// MarkPaidWithoutReceipt settles the full outstanding balance in one
// unreceipted cash payment. The installment keeps the sticky unverified flag
// for later audit.
func (s *PaymentService) MarkPaidWithoutReceipt(ctx context.Context, officeID, installmentID uuid.UUID, collectedBy *uuid.UUID) (*billing.Payment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
	if err != nil {
		return nil, err
	}
	if !installment.DueAmount.IsPositive() {
		return nil, shared.ErrInvalidState
	}

	return s.RecordPayment(ctx, officeID, RecordPaymentRequest{
		InstallmentID:  installmentID,
		Amount:         installment.DueAmount,
		Method:         billing.PaymentMethodCash,
		CollectedBy:    collectedBy,
		WithoutReceipt: true,
	})
}

// InitiateReceiptUpload returns a presigned upload URL for a receipt image.
// The key is not attached until ConfirmReceipt.
func (s *PaymentService) InitiateReceiptUpload(ctx context.Context, officeID, paymentID uuid.UUID, contentType string) (*ReceiptUploadResponse, error) {
	if !receiptImageContentTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Receipt must be an image or a PDF")
	}

	payment, err := s.paymentRepo.FindByIDForOffice(ctx, officeID, paymentID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("offices/%s/receipts/%s/%s", officeID, payment.ID, uuid.New())

	uploadURL, expiresAt, err := s.receiptStorage.GenerateUploadURL(ctx, objectKey, contentType, receiptUploadURLExpiry)
	if err != nil {
		s.logger.Error("failed to generate receipt upload URL",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to generate upload URL")
	}

	return &ReceiptUploadResponse{
		ObjectKey: objectKey,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmReceipt attaches an uploaded receipt image to the payment after
// verifying the object actually landed in storage
func (s *PaymentService) ConfirmReceipt(ctx context.Context, officeID, paymentID uuid.UUID, objectKey string) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForOffice(ctx, officeID, paymentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.receiptStorage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to verify uploaded object")
	}
	if !exists {
		return nil, shared.NewDomainError("OBJECT_NOT_FOUND", "Uploaded receipt not found in storage")
	}

	if err := payment.AttachReceipt(objectKey); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetReceiptURL returns a presigned download URL for the attached receipt
func (s *PaymentService) GetReceiptURL(ctx context.Context, officeID, paymentID uuid.UUID) (string, time.Time, error) {
	payment, err := s.paymentRepo.FindByIDForOffice(ctx, officeID, paymentID)
	if err != nil {
		return "", time.Time{}, err
	}
	if payment.ReceiptObjectKey == "" {
		return "", time.Time{}, shared.NewDomainError("NO_RECEIPT", "Payment has no attached receipt")
	}
	return s.receiptStorage.GenerateDownloadURL(ctx, payment.ReceiptObjectKey, receiptDownloadURLExpiry)
}

// ListByInstallment returns the payments recorded against one installment
func (s *PaymentService) ListByInstallment(ctx context.Context, officeID, installmentID uuid.UUID) ([]billing.Payment, error) {
	return s.paymentRepo.FindByInstallment(ctx, officeID, installmentID)
}

// ListForOffice returns payments across an office
func (s *PaymentService) ListForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	return s.paymentRepo.FindAllForOffice(ctx, officeID, filter)
}
