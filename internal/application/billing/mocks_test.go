package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockInstallmentRepository is a mock implementation of InstallmentRepository
type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*billing.Installment, error) {
	args := m.Called(ctx, officeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByKeyForOffice(ctx context.Context, officeID, contractID uuid.UUID, period billing.Period) (*billing.Installment, error) {
	args := m.Called(ctx, officeID, contractID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByContract(ctx context.Context, officeID, contractID uuid.UUID) ([]billing.Installment, error) {
	args := m.Called(ctx, officeID, contractID)
	return args.Get(0).([]billing.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindAllForOffice(ctx context.Context, officeID uuid.UUID, status *billing.InstallmentStatus, filter shared.Filter) ([]billing.Installment, error) {
	args := m.Called(ctx, officeID, status, filter)
	return args.Get(0).([]billing.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) CreateIfAbsent(ctx context.Context, installment *billing.Installment) (bool, error) {
	args := m.Called(ctx, installment)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) Save(ctx context.Context, installment *billing.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) SaveWithLock(ctx context.Context, installment *billing.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) FindDueBetweenForOffice(ctx context.Context, officeID uuid.UUID, from, to time.Time) ([]billing.Installment, error) {
	args := m.Called(ctx, officeID, from, to)
	return args.Get(0).([]billing.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindDateDerivedPage(ctx context.Context, afterID uuid.UUID, limit int) ([]billing.Installment, error) {
	args := m.Called(ctx, afterID, limit)
	return args.Get(0).([]billing.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) UpdateStatuses(ctx context.Context, updates []billing.StatusUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SaveWithInstallment(ctx context.Context, payment *billing.Payment, installment *billing.Installment) error {
	args := m.Called(ctx, payment, installment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, officeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByInstallment(ctx context.Context, officeID, installmentID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, officeID, installmentID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]billing.Payment, error) {
	args := m.Called(ctx, officeID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

// MockContractRepository is a mock implementation of ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*leasing.Contract, error) {
	args := m.Called(ctx, officeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]leasing.Contract, error) {
	args := m.Called(ctx, officeID, filter)
	return args.Get(0).([]leasing.Contract), args.Error(1)
}

func (m *MockContractRepository) CountForOffice(ctx context.Context, officeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, officeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contract *leasing.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockReceiptStorage is a mock implementation of ReceiptStorage
type MockReceiptStorage struct {
	mock.Mock
}

func (m *MockReceiptStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockReceiptStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockReceiptStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}
