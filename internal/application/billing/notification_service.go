package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notification audiences
const (
	AudienceTenant    = "TENANT"
	AudienceGuarantor = "GUARANTOR"
)

// KindGuarantorEscalation marks the guarantor notice five days past due
const KindGuarantorEscalation = "GUARANTOR_ESCALATION"

// reminderWindowDays bounds the due-date scan: the widest reminder offset is
// five days on either side of today
const reminderWindowDays = 5

// ReminderNotification is one rendered reminder ready for delivery
type ReminderNotification struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	PeriodKey     string          `json:"period"`
	Kind          string          `json:"kind"` // PRE_DUE_5, POST_DUE_1 or GUARANTOR_ESCALATION
	Audience      string          `json:"audience"`
	Recipients    []string        `json:"recipients"`
	Message       billing.Message `json:"message"`
}

// NotificationService computes the reminders due on a given day. Decisions
// are recomputed on every run from due dates alone; there is no sent-ledger,
// so re-running the same day yields the same batch again and the delivery
// layer is expected to deduplicate.
type NotificationService struct {
	installmentRepo billing.InstallmentRepository
	contractRepo    leasing.ContractRepository
	logger          *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	installmentRepo billing.InstallmentRepository,
	contractRepo leasing.ContractRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		installmentRepo: installmentRepo,
		contractRepo:    contractRepo,
		logger:          logger,
	}
}

// CollectReminders returns every reminder due today for one office: occupant
// reminders five days before and one day after the due date, and guarantor
// escalations five days past due. Disabled contracts and per-installment
// overrides suppress emission.
func (s *NotificationService) CollectReminders(ctx context.Context, officeID uuid.UUID, today time.Time) ([]ReminderNotification, error) {
	from := today.AddDate(0, 0, -reminderWindowDays)
	to := today.AddDate(0, 0, reminderWindowDays)

	installments, err := s.installmentRepo.FindDueBetweenForOffice(ctx, officeID, from, to)
	if err != nil {
		return nil, err
	}

	contracts := make(map[uuid.UUID]*leasing.Contract)
	notifications := make([]ReminderNotification, 0)

	for idx := range installments {
		installment := &installments[idx]

		contract, ok := contracts[installment.ContractID]
		if !ok {
			contract, err = s.contractRepo.FindByIDForOffice(ctx, officeID, installment.ContractID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("installment references missing contract, skipping",
						zap.String("installment_id", installment.ID.String()),
						zap.String("contract_id", installment.ContractID.String()),
					)
					continue
				}
				return nil, err
			}
			contracts[installment.ContractID] = contract
		}

		if !installment.NotificationsEnabled(contract.NotificationsEnabled()) {
			continue
		}

		if reminder := billing.TenantReminderDue(installment, today); reminder != nil {
			notifications = append(notifications, ReminderNotification{
				InstallmentID: installment.ID,
				ContractID:    contract.ID,
				PeriodKey:     installment.PeriodKey,
				Kind:          string(*reminder),
				Audience:      AudienceTenant,
				Recipients:    tenantRecipients(contract),
				Message:       billing.BuildTenantMessage(installment, contract.ID, *reminder),
			})
		}

		if s.guarantorEscalationApplies(installment, contract, today) {
			notifications = append(notifications, ReminderNotification{
				InstallmentID: installment.ID,
				ContractID:    contract.ID,
				PeriodKey:     installment.PeriodKey,
				Kind:          KindGuarantorEscalation,
				Audience:      AudienceGuarantor,
				Recipients:    guarantorRecipients(contract),
				Message:       billing.BuildGuarantorMessage(installment, contract.ID, contract.Occupant.Name),
			})
		}
	}

	s.logger.Info("reminder collection completed",
		zap.String("office_id", officeID.String()),
		zap.Int("installments_scanned", len(installments)),
		zap.Int("notifications", len(notifications)),
	)

	return notifications, nil
}

// guarantorEscalationApplies gates the escalation: the day must match, the
// contract must name a guarantor, and settled or renegotiated installments
// are excluded
func (s *NotificationService) guarantorEscalationApplies(installment *billing.Installment, contract *leasing.Contract, today time.Time) bool {
	if !contract.HasGuarantor() {
		return false
	}
	if installment.Status == billing.StatusPaid || installment.Status == billing.StatusInAgreement {
		return false
	}
	return billing.GuarantorEscalationDue(installment, today)
}

// tenantRecipients resolves the occupant-facing recipient list, falling back
// to the occupant's own contact when none is configured
func tenantRecipients(contract *leasing.Contract) []string {
	if len(contract.Notifications.TenantRecipients) > 0 {
		return contract.Notifications.TenantRecipients
	}
	if contract.Occupant.Email != "" {
		return []string{contract.Occupant.Email}
	}
	return nil
}

// guarantorRecipients resolves the guarantor-facing recipient list
func guarantorRecipients(contract *leasing.Contract) []string {
	if len(contract.Notifications.GuarantorRecipients) > 0 {
		return contract.Notifications.GuarantorRecipients
	}
	if contract.Guarantor.Present && contract.Guarantor.Email != "" {
		return []string{contract.Guarantor.Email}
	}
	return nil
}
