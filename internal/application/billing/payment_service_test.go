package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentService(paymentRepo *MockPaymentRepository, instRepo *MockInstallmentRepository, storage *MockReceiptStorage, publisher *MockEventPublisher) *PaymentService {
	return NewPaymentService(paymentRepo, instRepo, storage, publisher, zap.NewNop())
}

func TestRecordPayment_PartialThenPaid(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	instRepo := new(MockInstallmentRepository)
	publisher := new(MockEventPublisher)
	service := newPaymentService(paymentRepo, instRepo, new(MockReceiptStorage), publisher)

	officeID := uuid.New()
	inst := testInstallment(t, officeID)

	instRepo.On("FindByIDForOffice", mock.Anything, officeID, inst.ID).Return(inst, nil)
	paymentRepo.On("SaveWithInstallment", mock.Anything, mock.AnythingOfType("*billing.Payment"), inst).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	payment, err := service.RecordPayment(context.Background(), officeID, RecordPaymentRequest{
		InstallmentID: inst.ID,
		Amount:        decimal.NewFromInt(40000),
		Method:        billing.PaymentMethodTransfer,
	})

	require.NoError(t, err)
	assert.Equal(t, inst.ContractID, payment.ContractID)
	assert.Equal(t, billing.StatusPartial, inst.Status)
	assert.True(t, inst.DueAmount.Equal(decimal.NewFromInt(60000)))

	_, err = service.RecordPayment(context.Background(), officeID, RecordPaymentRequest{
		InstallmentID: inst.ID,
		Amount:        decimal.NewFromInt(60000),
		Method:        billing.PaymentMethodCash,
	})

	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, inst.Status)
	assert.True(t, inst.DueAmount.IsZero())
	paymentRepo.AssertNumberOfCalls(t, "SaveWithInstallment", 2)
}

func TestRecordPayment_InvalidAmountDoesNotPersist(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	instRepo := new(MockInstallmentRepository)
	service := newPaymentService(paymentRepo, instRepo, new(MockReceiptStorage), new(MockEventPublisher))

	officeID := uuid.New()
	inst := testInstallment(t, officeID)
	instRepo.On("FindByIDForOffice", mock.Anything, officeID, inst.ID).Return(inst, nil)

	_, err := service.RecordPayment(context.Background(), officeID, RecordPaymentRequest{
		InstallmentID: inst.ID,
		Amount:        decimal.NewFromInt(-100),
	})

	assert.Error(t, err)
	paymentRepo.AssertNotCalled(t, "SaveWithInstallment")
}

func TestMarkPaidWithoutReceipt_SettlesFullBalance(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	instRepo := new(MockInstallmentRepository)
	publisher := new(MockEventPublisher)
	service := newPaymentService(paymentRepo, instRepo, new(MockReceiptStorage), publisher)

	officeID := uuid.New()
	inst := testInstallment(t, officeID)

	instRepo.On("FindByIDForOffice", mock.Anything, officeID, inst.ID).Return(inst, nil)
	paymentRepo.On("SaveWithInstallment", mock.Anything, mock.AnythingOfType("*billing.Payment"), inst).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	payment, err := service.MarkPaidWithoutReceipt(context.Background(), officeID, inst.ID, nil)

	require.NoError(t, err)
	assert.True(t, payment.WithoutReceipt)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, billing.PaymentMethodCash, payment.Method)
	assert.Equal(t, billing.StatusPaid, inst.Status)
	assert.True(t, inst.HasUnverifiedPayments)
}

func TestMarkPaidWithoutReceipt_RejectsSettledInstallment(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	instRepo := new(MockInstallmentRepository)
	publisher := new(MockEventPublisher)
	service := newPaymentService(paymentRepo, instRepo, new(MockReceiptStorage), publisher)

	officeID := uuid.New()
	inst := testInstallment(t, officeID)
	require.NoError(t, inst.ApplyPayment(decimal.NewFromInt(100000), false))
	inst.ClearDomainEvents()

	instRepo.On("FindByIDForOffice", mock.Anything, officeID, inst.ID).Return(inst, nil)

	_, err := service.MarkPaidWithoutReceipt(context.Background(), officeID, inst.ID, nil)

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	paymentRepo.AssertNotCalled(t, "SaveWithInstallment")
}

func TestInitiateReceiptUpload(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	storage := new(MockReceiptStorage)
	service := newPaymentService(paymentRepo, new(MockInstallmentRepository), storage, new(MockEventPublisher))

	officeID := uuid.New()
	payment, err := billing.NewPayment(officeID, uuid.New(), uuid.New(),
		decimal.NewFromInt(100), billing.PaymentMethodCash, time.Now(), false)
	require.NoError(t, err)

	expiresAt := time.Now().Add(15 * time.Minute)
	paymentRepo.On("FindByIDForOffice", mock.Anything, officeID, payment.ID).Return(payment, nil)
	storage.On("GenerateUploadURL", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", 15*time.Minute).
		Return("https://storage.example/upload", expiresAt, nil)

	resp, err := service.InitiateReceiptUpload(context.Background(), officeID, payment.ID, "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/upload", resp.UploadURL)
	assert.Contains(t, resp.ObjectKey, payment.ID.String())
}

func TestInitiateReceiptUpload_RejectsContentType(t *testing.T) {
	service := newPaymentService(new(MockPaymentRepository), new(MockInstallmentRepository), new(MockReceiptStorage), new(MockEventPublisher))

	_, err := service.InitiateReceiptUpload(context.Background(), uuid.New(), uuid.New(), "application/x-msdownload")

	assert.Error(t, err)
}

func TestConfirmReceipt(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	storage := new(MockReceiptStorage)
	service := newPaymentService(paymentRepo, new(MockInstallmentRepository), storage, new(MockEventPublisher))

	officeID := uuid.New()
	payment, err := billing.NewPayment(officeID, uuid.New(), uuid.New(),
		decimal.NewFromInt(100), billing.PaymentMethodCash, time.Now(), false)
	require.NoError(t, err)

	paymentRepo.On("FindByIDForOffice", mock.Anything, officeID, payment.ID).Return(payment, nil)
	storage.On("ObjectExists", mock.Anything, "offices/x/receipts/key").Return(true, nil)
	paymentRepo.On("Save", mock.Anything, payment).Return(nil)

	updated, err := service.ConfirmReceipt(context.Background(), officeID, payment.ID, "offices/x/receipts/key")

	require.NoError(t, err)
	assert.Equal(t, "offices/x/receipts/key", updated.ReceiptObjectKey)
}

func TestConfirmReceipt_MissingObject(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	storage := new(MockReceiptStorage)
	service := newPaymentService(paymentRepo, new(MockInstallmentRepository), storage, new(MockEventPublisher))

	officeID := uuid.New()
	payment, err := billing.NewPayment(officeID, uuid.New(), uuid.New(),
		decimal.NewFromInt(100), billing.PaymentMethodCash, time.Now(), false)
	require.NoError(t, err)

	paymentRepo.On("FindByIDForOffice", mock.Anything, officeID, payment.ID).Return(payment, nil)
	storage.On("ObjectExists", mock.Anything, "gone").Return(false, nil)

	_, err = service.ConfirmReceipt(context.Background(), officeID, payment.ID, "gone")

	assert.Error(t, err)
	paymentRepo.AssertNotCalled(t, "Save")
}
