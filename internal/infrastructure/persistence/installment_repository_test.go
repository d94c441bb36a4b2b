package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.InstallmentModel{}, &models.PaymentModel{})
	require.NoError(t, err)

	return db
}

func mustPeriod(t *testing.T, key string) billing.Period {
	p, err := billing.ParsePeriod(key)
	require.NoError(t, err)
	return p
}

func newTestInstallment(t *testing.T, officeID, contractID uuid.UUID, periodKey string) *billing.Installment {
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	inst, err := billing.NewInstallment(
		officeID, contractID, mustPeriod(t, periodKey), 10,
		decimal.NewFromInt(100000), today,
	)
	require.NoError(t, err)
	inst.ClearDomainEvents()
	return inst
}

func TestGormInstallmentRepository_CreateIfAbsent(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	officeID := uuid.New()
	contractID := uuid.New()

	t.Run("inserts new installment", func(t *testing.T) {
		inst := newTestInstallment(t, officeID, contractID, "2024-06")

		created, err := repo.CreateIfAbsent(ctx, inst)
		require.NoError(t, err)
		assert.True(t, created)

		found, err := repo.FindByKeyForOffice(ctx, officeID, contractID, mustPeriod(t, "2024-06"))
		require.NoError(t, err)
		assert.Equal(t, inst.ID, found.ID)
		assert.Equal(t, "2024-06", found.PeriodKey)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(100000)))
		require.Len(t, found.Items, 1)
		assert.Equal(t, billing.LineItemTypeRent, found.Items[0].Type)
	})

	t.Run("second insert with same natural key is a no-op", func(t *testing.T) {
		duplicate := newTestInstallment(t, officeID, contractID, "2024-06")

		created, err := repo.CreateIfAbsent(ctx, duplicate)
		require.NoError(t, err)
		assert.False(t, created)

		// original row is untouched
		found, err := repo.FindByKeyForOffice(ctx, officeID, contractID, mustPeriod(t, "2024-06"))
		require.NoError(t, err)
		assert.NotEqual(t, duplicate.ID, found.ID)
	})
}

func TestGormInstallmentRepository_SaveWithLock(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	officeID := uuid.New()
	inst := newTestInstallment(t, officeID, uuid.New(), "2024-07")
	created, err := repo.CreateIfAbsent(ctx, inst)
	require.NoError(t, err)
	require.True(t, created)

	t.Run("persists mutation when version matches", func(t *testing.T) {
		today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		err := inst.UpsertLineItem(billing.LineItemInput{
			Type:   billing.LineItemTypeExpenses,
			Label:  "Expensas",
			Amount: decimal.NewFromInt(35000),
		}, today)
		require.NoError(t, err)

		require.NoError(t, repo.SaveWithLock(ctx, inst))

		found, err := repo.FindByIDForOffice(ctx, officeID, inst.ID)
		require.NoError(t, err)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(135000)))
		assert.Equal(t, 2, found.Version)
		assert.Len(t, found.Items, 2)
	})

	t.Run("rejects stale version", func(t *testing.T) {
		stale := newTestInstallment(t, officeID, inst.ContractID, "2024-07")
		stale.ID = inst.ID
		stale.Version = 5 // stored row is at version 2

		err := repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormInstallmentRepository_FindByContract(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	officeID := uuid.New()
	contractID := uuid.New()

	// insert out of period order
	for _, key := range []string{"2024-08", "2024-06", "2024-07"} {
		_, err := repo.CreateIfAbsent(ctx, newTestInstallment(t, officeID, contractID, key))
		require.NoError(t, err)
	}
	// another contract's installment must not leak in
	_, err := repo.CreateIfAbsent(ctx, newTestInstallment(t, officeID, uuid.New(), "2024-06"))
	require.NoError(t, err)

	found, err := repo.FindByContract(ctx, officeID, contractID)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "2024-06", found[0].PeriodKey)
	assert.Equal(t, "2024-07", found[1].PeriodKey)
	assert.Equal(t, "2024-08", found[2].PeriodKey)
}

func TestGormInstallmentRepository_FindAllForOffice(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	officeID := uuid.New()
	otherOffice := uuid.New()

	paid := newTestInstallment(t, officeID, uuid.New(), "2024-06")
	require.NoError(t, paid.ApplyPayment(decimal.NewFromInt(100000), false))
	paid.ClearDomainEvents()

	for _, inst := range []*billing.Installment{
		paid,
		newTestInstallment(t, officeID, uuid.New(), "2024-07"),
		newTestInstallment(t, otherOffice, uuid.New(), "2024-07"),
	} {
		created, err := repo.CreateIfAbsent(ctx, inst)
		require.NoError(t, err)
		require.True(t, created)
	}

	t.Run("lists only the office's installments", func(t *testing.T) {
		found, err := repo.FindAllForOffice(ctx, officeID, nil, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := billing.StatusPaid
		found, err := repo.FindAllForOffice(ctx, officeID, &status, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, billing.StatusPaid, found[0].Status)
	})
}

func TestGormInstallmentRepository_FindDueBetweenForOffice(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	officeID := uuid.New()
	contractID := uuid.New()

	// due dates: June 10, July 10, August 10
	for _, key := range []string{"2024-06", "2024-07", "2024-08"} {
		_, err := repo.CreateIfAbsent(ctx, newTestInstallment(t, officeID, contractID, key))
		require.NoError(t, err)
	}

	from := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	found, err := repo.FindDueBetweenForOffice(ctx, officeID, from, to)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "2024-06", found[0].PeriodKey)
	assert.Equal(t, "2024-07", found[1].PeriodKey)
}

func TestGormInstallmentRepository_FindDateDerivedPage(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	// three date-derived rows across two offices plus one PAID row
	for i := 0; i < 3; i++ {
		_, err := repo.CreateIfAbsent(ctx, newTestInstallment(t, uuid.New(), uuid.New(), "2024-06"))
		require.NoError(t, err)
	}
	paid := newTestInstallment(t, uuid.New(), uuid.New(), "2024-06")
	require.NoError(t, paid.ApplyPayment(decimal.NewFromInt(100000), false))
	paid.ClearDomainEvents()
	_, err := repo.CreateIfAbsent(ctx, paid)
	require.NoError(t, err)

	t.Run("excludes payment-derived statuses", func(t *testing.T) {
		page, err := repo.FindDateDerivedPage(ctx, uuid.Nil, 10)
		require.NoError(t, err)
		assert.Len(t, page, 3)
		for _, inst := range page {
			assert.True(t, inst.Status.IsDateDerived())
		}
	})

	t.Run("pages by id cursor", func(t *testing.T) {
		first, err := repo.FindDateDerivedPage(ctx, uuid.Nil, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, err := repo.FindDateDerivedPage(ctx, first[1].ID, 2)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.NotEqual(t, first[0].ID, second[0].ID)
		assert.NotEqual(t, first[1].ID, second[0].ID)
	})
}

func TestGormInstallmentRepository_UpdateStatuses(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	officeID := uuid.New()
	a := newTestInstallment(t, officeID, uuid.New(), "2024-06")
	b := newTestInstallment(t, officeID, uuid.New(), "2024-07")
	for _, inst := range []*billing.Installment{a, b} {
		_, err := repo.CreateIfAbsent(ctx, inst)
		require.NoError(t, err)
	}

	err := repo.UpdateStatuses(ctx, []billing.StatusUpdate{
		{ID: a.ID, Status: billing.StatusOverdue},
		{ID: b.ID, Status: billing.StatusDueToday},
	})
	require.NoError(t, err)

	foundA, err := repo.FindByIDForOffice(ctx, officeID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOverdue, foundA.Status)

	foundB, err := repo.FindByIDForOffice(ctx, officeID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusDueToday, foundB.Status)
}

func TestGormInstallmentRepository_FindByIDForOffice_WrongOffice(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	inst := newTestInstallment(t, uuid.New(), uuid.New(), "2024-06")
	_, err := repo.CreateIfAbsent(ctx, inst)
	require.NoError(t, err)

	_, err = repo.FindByIDForOffice(ctx, uuid.New(), inst.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
