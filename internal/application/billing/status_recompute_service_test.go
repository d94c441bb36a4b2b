package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// sweepInstallment builds an installment whose stored status was classified
// against seenOn, so a later sweep day can observe a stale status
func sweepInstallment(t *testing.T, dueDay int, seenOn time.Time) *billing.Installment {
	t.Helper()
	inst, err := billing.NewInstallment(uuid.New(), uuid.New(),
		billing.Period{Year: 2024, Month: time.June}, dueDay,
		decimal.NewFromInt(100000), seenOn)
	require.NoError(t, err)
	inst.ClearDomainEvents()
	return inst
}

func TestRecomputeAll_FlipsStaleStatuses(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	service := NewStatusRecomputeService(instRepo, zap.NewNop())

	// both were classified weeks ago; today they are past due
	stale1 := sweepInstallment(t, 1, date(2024, time.May, 20)) // UPCOMING, due 2024-06-01
	stale2 := sweepInstallment(t, 2, date(2024, time.May, 20)) // UPCOMING, due 2024-06-02
	require.Equal(t, billing.StatusUpcoming, stale1.Status)

	instRepo.On("FindDateDerivedPage", mock.Anything, uuid.Nil, 500).
		Return([]billing.Installment{*stale1, *stale2}, nil)
	instRepo.On("UpdateStatuses", mock.Anything, mock.MatchedBy(func(updates []billing.StatusUpdate) bool {
		return len(updates) == 2 &&
			updates[0].Status == billing.StatusOverdue &&
			updates[1].Status == billing.StatusOverdue
	})).Return(nil)

	result, err := service.RecomputeAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 2, result.Updated)
	instRepo.AssertExpectations(t)
}

func TestRecomputeAll_NoFlipsNoWrites(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	service := NewStatusRecomputeService(instRepo, zap.NewNop())

	// due far in the future, already UPCOMING, nothing to change
	fresh, err := billing.NewInstallment(uuid.New(), uuid.New(),
		billing.Period{Year: time.Now().UTC().Year() + 1, Month: time.January}, 10,
		decimal.NewFromInt(1), time.Now().UTC())
	require.NoError(t, err)

	instRepo.On("FindDateDerivedPage", mock.Anything, uuid.Nil, 500).
		Return([]billing.Installment{*fresh}, nil)

	result, err := service.RecomputeAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Updated)
	instRepo.AssertNotCalled(t, "UpdateStatuses")
}

func TestRecomputeAll_PagesWithCursor(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	service := NewStatusRecomputeService(instRepo, zap.NewNop())
	service.SetBatchSize(2)

	a := sweepInstallment(t, 1, date(2024, time.May, 20))
	b := sweepInstallment(t, 2, date(2024, time.May, 20))
	c := sweepInstallment(t, 3, date(2024, time.May, 20))

	instRepo.On("FindDateDerivedPage", mock.Anything, uuid.Nil, 2).
		Return([]billing.Installment{*a, *b}, nil).Once()
	instRepo.On("FindDateDerivedPage", mock.Anything, b.ID, 2).
		Return([]billing.Installment{*c}, nil).Once()
	instRepo.On("UpdateStatuses", mock.Anything, mock.Anything).Return(nil)

	result, err := service.RecomputeAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 3, result.Updated)
	instRepo.AssertExpectations(t)
}

func TestRecomputeAll_EmptyDataset(t *testing.T) {
	instRepo := new(MockInstallmentRepository)
	service := NewStatusRecomputeService(instRepo, zap.NewNop())

	instRepo.On("FindDateDerivedPage", mock.Anything, uuid.Nil, 500).
		Return([]billing.Installment{}, nil)

	result, err := service.RecomputeAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Equal(t, 0, result.Updated)
}
