package leasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorageService defines the object storage operations the contract
// workflows need. Implemented by the infrastructure layer (S3 compatible).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading an object
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL generates a presigned URL for downloading an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
}

// Upload handshake expiries
const (
	pdfUploadURLExpiry   = 15 * time.Minute
	pdfDownloadURLExpiry = 1 * time.Hour
)

// ContractService implements contract management use cases
type ContractService struct {
	contractRepo   leasing.ContractRepository
	storageService ObjectStorageService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo leasing.ContractRepository,
	storageService ObjectStorageService,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo:   contractRepo,
		storageService: storageService,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateContract creates a contract and publishes its creation event, which
// triggers installment generation downstream
func (s *ContractService) CreateContract(ctx context.Context, officeID uuid.UUID, req CreateContractRequest) (*leasing.Contract, error) {
	var guarantor *leasing.Party
	if req.Guarantor != nil {
		guarantor = &leasing.Party{
			Name:       req.Guarantor.Name,
			NationalID: req.Guarantor.NationalID,
			Email:      req.Guarantor.Email,
			Phone:      req.Guarantor.Phone,
		}
	}

	contract, err := leasing.NewContract(
		officeID,
		req.PropertyLabel,
		req.PropertyAddress,
		leasing.Party{Name: req.Occupant.Name, NationalID: req.Occupant.NationalID, Email: req.Occupant.Email, Phone: req.Occupant.Phone},
		leasing.Party{Name: req.Owner.Name, NationalID: req.Owner.NationalID, Email: req.Owner.Email, Phone: req.Owner.Phone},
		guarantor,
		req.StartDate,
		req.EndDate,
		req.DueDay,
		req.RentAmount,
		leasing.EscalationRule{
			Type:         leasing.EscalationType(req.EscalationType),
			PeriodMonths: req.EscalationMonths,
		},
		req.DepositAmount,
		leasing.GuaranteeType(req.GuaranteeType),
	)
	if err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		s.logger.Error("failed to save contract",
			zap.String("office_id", officeID.String()),
			zap.String("property", req.PropertyLabel),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, contract.GetDomainEvents()...); err != nil {
		// generation catches up via the idempotent regenerate endpoint
		s.logger.Error("failed to publish contract created event",
			zap.String("contract_id", contract.ID.String()),
			zap.Error(err),
		)
	}
	contract.ClearDomainEvents()

	s.logger.Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("office_id", officeID.String()),
		zap.String("property", contract.PropertyLabel),
		zap.String("occupant", contract.Occupant.Name),
	)

	return contract, nil
}

// GetContract returns one contract scoped to an office
func (s *ContractService) GetContract(ctx context.Context, officeID, contractID uuid.UUID) (*leasing.Contract, error) {
	return s.contractRepo.FindByIDForOffice(ctx, officeID, contractID)
}

// ListContracts returns a paginated contract listing for an office
func (s *ContractService) ListContracts(ctx context.Context, officeID uuid.UUID, filter shared.Filter) (*shared.Paginated[leasing.Contract], error) {
	contracts, err := s.contractRepo.FindAllForOffice(ctx, officeID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.contractRepo.CountForOffice(ctx, officeID)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(contracts, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SetNotificationConfig replaces the contract's reminder configuration
func (s *ContractService) SetNotificationConfig(ctx context.Context, officeID, contractID uuid.UUID, req NotificationConfigRequest) (*leasing.Contract, error) {
	contract, err := s.contractRepo.FindByIDForOffice(ctx, officeID, contractID)
	if err != nil {
		return nil, err
	}

	contract.SetNotificationConfig(leasing.NotificationConfig{
		Enabled:             req.Enabled,
		TenantRecipients:    req.TenantRecipients,
		GuarantorRecipients: req.GuarantorRecipients,
	})

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	s.logger.Info("contract notification config updated",
		zap.String("contract_id", contract.ID.String()),
		zap.Bool("enabled", req.Enabled),
	)

	return contract, nil
}

// InitiateContractPDFUpload returns a presigned upload URL for the signed
// contract document. The key is not attached until ConfirmContractPDF.
func (s *ContractService) InitiateContractPDFUpload(ctx context.Context, officeID, contractID uuid.UUID, contentType string) (*InitiatePDFUploadResponse, error) {
	if contentType != "application/pdf" {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Contract documents must be PDF")
	}

	contract, err := s.contractRepo.FindByIDForOffice(ctx, officeID, contractID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("offices/%s/contracts/%s/%s.pdf", officeID, contract.ID, uuid.New())

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, objectKey, contentType, pdfUploadURLExpiry)
	if err != nil {
		s.logger.Error("failed to generate contract PDF upload URL",
			zap.String("contract_id", contract.ID.String()),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to generate upload URL")
	}

	return &InitiatePDFUploadResponse{
		ObjectKey: objectKey,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmContractPDF attaches an uploaded document to the contract after
// verifying the object actually landed in storage
func (s *ContractService) ConfirmContractPDF(ctx context.Context, officeID, contractID uuid.UUID, objectKey string) (*leasing.Contract, error) {
	contract, err := s.contractRepo.FindByIDForOffice(ctx, officeID, contractID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storageService.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to verify uploaded object")
	}
	if !exists {
		return nil, shared.NewDomainError("OBJECT_NOT_FOUND", "Uploaded document not found in storage")
	}

	if err := contract.AttachPDF(objectKey); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, contract.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish pdf attached event",
			zap.String("contract_id", contract.ID.String()),
			zap.Error(err),
		)
	}
	contract.ClearDomainEvents()

	return contract, nil
}

// GetContractPDFURL returns a presigned download URL for the attached document
func (s *ContractService) GetContractPDFURL(ctx context.Context, officeID, contractID uuid.UUID) (string, time.Time, error) {
	contract, err := s.contractRepo.FindByIDForOffice(ctx, officeID, contractID)
	if err != nil {
		return "", time.Time{}, err
	}
	if contract.PDFObjectKey == "" {
		return "", time.Time{}, shared.NewDomainError("NO_DOCUMENT", "Contract has no attached document")
	}
	return s.storageService.GenerateDownloadURL(ctx, contract.PDFObjectKey, pdfDownloadURLExpiry)
}
