package billing

import (
	"context"
	"fmt"

	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContractCreatedHandler reacts to contract creation by materializing the
// contract's installment schedule. Generation is idempotent, so an event
// redelivered after a partial failure simply fills in the missing months.
type ContractCreatedHandler struct {
	installmentService *InstallmentService
	logger             *zap.Logger
}

// NewContractCreatedHandler creates a new handler for contract created events
func NewContractCreatedHandler(
	installmentService *InstallmentService,
	logger *zap.Logger,
) *ContractCreatedHandler {
	return &ContractCreatedHandler{
		installmentService: installmentService,
		logger:             logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ContractCreatedHandler) EventTypes() []string {
	return []string{leasing.EventTypeContractCreated}
}

// Handle processes a ContractCreatedEvent by generating the installments
func (h *ContractCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	createdEvent, ok := event.(*leasing.ContractCreatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", leasing.EventTypeContractCreated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			leasing.EventTypeContractCreated, event.EventType())
	}

	h.logger.Info("processing contract created event for installment generation",
		zap.String("contract_id", createdEvent.ContractID.String()),
		zap.String("office_id", createdEvent.OfficeID().String()),
		zap.Time("start_date", createdEvent.StartDate),
		zap.Time("end_date", createdEvent.EndDate),
		zap.Int("due_day", createdEvent.DueDay),
	)

	result, err := h.installmentService.GenerateFromSchedule(
		ctx,
		createdEvent.OfficeID(),
		createdEvent.ContractID,
		createdEvent.StartDate,
		createdEvent.EndDate,
		createdEvent.DueDay,
		createdEvent.RentAmount,
	)
	if err != nil {
		h.logger.Error("failed to generate installments for new contract",
			zap.String("contract_id", createdEvent.ContractID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to generate installments: %w", err)
	}

	h.logger.Info("installments generated for new contract",
		zap.String("contract_id", createdEvent.ContractID.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)

	return nil
}

// Ensure ContractCreatedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ContractCreatedHandler)(nil)
