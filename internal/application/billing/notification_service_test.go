package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// reminderContract builds a contract with a guarantor and configured
// recipient lists
func reminderContract(t *testing.T, officeID uuid.UUID) *leasing.Contract {
	t.Helper()
	guarantor := leasing.Party{Name: "Roberto Garante", Email: "roberto@example.com"}
	c, err := leasing.NewContract(
		officeID, "Depto 3B", "Av. Rivadavia 1234",
		leasing.Party{Name: "María González", Email: "maria@example.com"},
		leasing.Party{Name: "Carlos Dueño"},
		&guarantor,
		date(2024, time.January, 15), date(2024, time.December, 31),
		10, decimal.NewFromInt(100000), leasing.EscalationRule{}, decimal.Zero,
		leasing.GuaranteeTypeProperty,
	)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

// installmentFor builds an installment for the contract due 2024-06-10
func installmentFor(t *testing.T, contract *leasing.Contract) *billing.Installment {
	t.Helper()
	inst, err := billing.NewInstallment(contract.OfficeID, contract.ID,
		billing.Period{Year: 2024, Month: time.June}, 10,
		decimal.NewFromInt(100000), date(2024, time.May, 20))
	require.NoError(t, err)
	inst.ClearDomainEvents()
	return inst
}

func newNotificationService(instRepo *MockInstallmentRepository, contractRepo *MockContractRepository) *NotificationService {
	return NewNotificationService(instRepo, contractRepo, zap.NewNop())
}

func TestCollectReminders_PreDueWindow(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := reminderContract(t, officeID)
	inst := installmentFor(t, contract)
	today := date(2024, time.June, 5) // five days before the due date

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID,
		date(2024, time.May, 31), date(2024, time.June, 10)).
		Return([]billing.Installment{*inst}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil)

	notifications, err := service.CollectReminders(context.Background(), officeID, today)

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.Equal(t, string(billing.ReminderPreDue), n.Kind)
	assert.Equal(t, AudienceTenant, n.Audience)
	assert.Equal(t, []string{"maria@example.com"}, n.Recipients)
	assert.Contains(t, n.Message.Body, "10/06/2024")
}

func TestCollectReminders_GuarantorEscalation(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := reminderContract(t, officeID)
	inst := installmentFor(t, contract)
	inst.Status = billing.StatusOverdue
	today := date(2024, time.June, 15) // five days past due

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID, mock.Anything, mock.Anything).
		Return([]billing.Installment{*inst}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil)

	notifications, err := service.CollectReminders(context.Background(), officeID, today)

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.Equal(t, KindGuarantorEscalation, n.Kind)
	assert.Equal(t, AudienceGuarantor, n.Audience)
	assert.Equal(t, []string{"roberto@example.com"}, n.Recipients)
	assert.Contains(t, n.Message.Body, "María González")
}

func TestCollectReminders_SkipsEscalationWithoutGuarantor(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := testContract(t, officeID) // no guarantor
	inst, err := billing.NewInstallment(officeID, contract.ID,
		billing.Period{Year: 2024, Month: time.June}, 10,
		decimal.NewFromInt(100000), date(2024, time.May, 20))
	require.NoError(t, err)
	inst.Status = billing.StatusOverdue

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID, mock.Anything, mock.Anything).
		Return([]billing.Installment{*inst}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil)

	notifications, err := service.CollectReminders(context.Background(), officeID, date(2024, time.June, 15))

	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestCollectReminders_SkipsPaidAndAgreementEscalations(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := reminderContract(t, officeID)

	paid := installmentFor(t, contract)
	require.NoError(t, paid.ApplyPayment(decimal.NewFromInt(100000), false))
	paid.ClearDomainEvents()

	agreed := installmentFor(t, contract)
	require.NoError(t, agreed.SetAgreement(true, date(2024, time.June, 14)))

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID, mock.Anything, mock.Anything).
		Return([]billing.Installment{*paid, *agreed}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil)

	notifications, err := service.CollectReminders(context.Background(), officeID, date(2024, time.June, 15))

	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestCollectReminders_DisabledContractSuppressesAll(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := reminderContract(t, officeID)
	contract.SetNotificationConfig(leasing.NotificationConfig{Enabled: false})
	inst := installmentFor(t, contract)

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID, mock.Anything, mock.Anything).
		Return([]billing.Installment{*inst}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil)

	notifications, err := service.CollectReminders(context.Background(), officeID, date(2024, time.June, 5))

	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestCollectReminders_InstallmentOverrideBeatsContract(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := reminderContract(t, officeID)
	contract.SetNotificationConfig(leasing.NotificationConfig{Enabled: false, TenantRecipients: []string{"maria@example.com"}})

	inst := installmentFor(t, contract)
	on := true
	inst.SetNotificationOverride(&on)

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID, mock.Anything, mock.Anything).
		Return([]billing.Installment{*inst}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil)

	notifications, err := service.CollectReminders(context.Background(), officeID, date(2024, time.June, 5))

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, string(billing.ReminderPreDue), notifications[0].Kind)
}

func TestCollectReminders_ContractLoadedOnce(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	contractRepo := new(MockContractRepository)
	service := newNotificationService(instRepo, contractRepo)

	officeID := uuid.New()
	contract := reminderContract(t, officeID)
	a := installmentFor(t, contract)
	b, err := billing.NewInstallment(officeID, contract.ID,
		billing.Period{Year: 2024, Month: time.July}, 10,
		decimal.NewFromInt(100000), date(2024, time.May, 20))
	require.NoError(t, err)

	instRepo.On("FindDueBetweenForOffice", mock.Anything, officeID, mock.Anything, mock.Anything).
		Return([]billing.Installment{*a, *b}, nil)
	contractRepo.On("FindByIDForOffice", mock.Anything, officeID, contract.ID).Return(contract, nil).Once()

	_, err = service.CollectReminders(context.Background(), officeID, date(2024, time.June, 5))

	require.NoError(t, err)
	contractRepo.AssertExpectations(t)
}
