package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GenerationResult summarizes one generation run over a contract
type GenerationResult struct {
	ContractID uuid.UUID `json:"contract_id"`
	Created    int       `json:"created"`
	Skipped    int       `json:"skipped"`
}

// InstallmentService implements the installment lifecycle use cases
type InstallmentService struct {
	installmentRepo billing.InstallmentRepository
	contractRepo    leasing.ContractRepository
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	installmentRepo billing.InstallmentRepository,
	contractRepo leasing.ContractRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *InstallmentService {
	return &InstallmentService{
		installmentRepo: installmentRepo,
		contractRepo:    contractRepo,
		eventPublisher:  eventPublisher,
		logger:          logger,
	}
}

// GenerateForContract materializes one installment per month of the contract's
// date range. Generation is idempotent on the contract+period natural key:
// months that already exist are skipped and never overwritten, so re-running
// after a date-range extension only fills the gap.
func (s *InstallmentService) GenerateForContract(ctx context.Context, officeID, contractID uuid.UUID) (*GenerationResult, error) {
	contract, err := s.contractRepo.FindByIDForOffice(ctx, officeID, contractID)
	if err != nil {
		return nil, err
	}

	return s.GenerateFromSchedule(ctx, officeID, contract.ID,
		contract.StartDate, contract.EndDate, contract.DueDay, contract.RentAmount)
}

// GenerateFromSchedule runs generation from an explicit billing schedule.
// The contract-created event handler uses this form to avoid re-reading the
// aggregate it was derived from.
func (s *InstallmentService) GenerateFromSchedule(
	ctx context.Context,
	officeID uuid.UUID,
	contractID uuid.UUID,
	startDate time.Time,
	endDate time.Time,
	dueDay int,
	rentAmount decimal.Decimal,
) (*GenerationResult, error) {
	if endDate.Before(startDate) {
		return nil, shared.ErrInvalidDateRange
	}

	today := time.Now().UTC()
	result := &GenerationResult{ContractID: contractID}

	for _, period := range billing.PeriodsBetween(startDate, endDate) {
		installment, err := billing.NewInstallment(officeID, contractID, period, dueDay, rentAmount, today)
		if err != nil {
			return nil, err
		}

		created, err := s.installmentRepo.CreateIfAbsent(ctx, installment)
		if err != nil {
			s.logger.Error("failed to create installment",
				zap.String("contract_id", contractID.String()),
				zap.String("period", period.Key()),
				zap.Error(err),
			)
			return nil, err
		}
		if !created {
			result.Skipped++
			continue
		}
		result.Created++

		if err := s.eventPublisher.Publish(ctx, installment.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish installment generated event",
				zap.String("installment_id", installment.ID.String()),
				zap.Error(err),
			)
		}
		installment.ClearDomainEvents()
	}

	s.logger.Info("installment generation completed",
		zap.String("office_id", officeID.String()),
		zap.String("contract_id", contractID.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// GetInstallment returns one installment scoped to an office
func (s *InstallmentService) GetInstallment(ctx context.Context, officeID, installmentID uuid.UUID) (*billing.Installment, error) {
	return s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
}

// ListByContract returns the installments of a contract ordered by period
func (s *InstallmentService) ListByContract(ctx context.Context, officeID, contractID uuid.UUID) ([]billing.Installment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	return s.installmentRepo.FindByContract(ctx, officeID, contractID)
}

// ListForOffice returns installments across all contracts of an office,
// optionally filtered by status
func (s *InstallmentService) ListForOffice(ctx context.Context, officeID uuid.UUID, status *billing.InstallmentStatus, filter shared.Filter) ([]billing.Installment, error) {
	if status != nil && !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown installment status filter")
	}
	return s.installmentRepo.FindAllForOffice(ctx, officeID, status, filter)
}

// UpsertLineItem adds or edits a line item on an installment and persists the
// re-derived totals with optimistic locking
func (s *InstallmentService) UpsertLineItem(ctx context.Context, officeID, installmentID uuid.UUID, input billing.LineItemInput) (*billing.Installment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
	if err != nil {
		return nil, err
	}

	if err := installment.UpsertLineItem(input, time.Now()); err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithLock(ctx, installment); err != nil {
		return nil, err
	}

	s.logger.Info("line item upserted",
		zap.String("installment_id", installment.ID.String()),
		zap.String("type", string(input.Type)),
		zap.String("total_amount", installment.TotalAmount.String()),
	)

	return installment, nil
}

// RemoveLineItem deletes a line item and persists the re-derived totals
func (s *InstallmentService) RemoveLineItem(ctx context.Context, officeID, installmentID, itemID uuid.UUID) (*billing.Installment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
	if err != nil {
		return nil, err
	}

	if err := installment.RemoveLineItem(itemID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithLock(ctx, installment); err != nil {
		return nil, err
	}

	return installment, nil
}

// AddLateFee appends a punitive-interest item to an installment
func (s *InstallmentService) AddLateFee(ctx context.Context, officeID, installmentID uuid.UUID, amount decimal.Decimal, label string) (*billing.Installment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
	if err != nil {
		return nil, err
	}

	if err := installment.AddLateFee(amount, label, time.Now()); err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithLock(ctx, installment); err != nil {
		return nil, err
	}

	s.logger.Info("late fee added",
		zap.String("installment_id", installment.ID.String()),
		zap.String("amount", amount.String()),
	)

	return installment, nil
}

// SetAgreement toggles the manual IN_AGREEMENT override on an installment
func (s *InstallmentService) SetAgreement(ctx context.Context, officeID, installmentID uuid.UUID, inAgreement bool) (*billing.Installment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
	if err != nil {
		return nil, err
	}

	if err := installment.SetAgreement(inAgreement, time.Now()); err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithLock(ctx, installment); err != nil {
		return nil, err
	}

	s.logger.Info("agreement flag updated",
		zap.String("installment_id", installment.ID.String()),
		zap.Bool("in_agreement", inAgreement),
		zap.String("status", string(installment.Status)),
	)

	return installment, nil
}

// SetNotificationOverride sets the per-installment reminder override.
// nil restores inheritance from the contract configuration.
func (s *InstallmentService) SetNotificationOverride(ctx context.Context, officeID, installmentID uuid.UUID, enabled *bool) (*billing.Installment, error) {
	installment, err := s.installmentRepo.FindByIDForOffice(ctx, officeID, installmentID)
	if err != nil {
		return nil, err
	}

	installment.SetNotificationOverride(enabled)

	if err := s.installmentRepo.SaveWithLock(ctx, installment); err != nil {
		return nil, err
	}

	return installment, nil
}
