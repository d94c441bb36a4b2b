package office

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scopedRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	OfficeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"size:100"`
}

func (scopedRecord) TableName() string {
	return "scoped_records"
}

func setupScopeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&scopedRecord{})
	require.NoError(t, err)

	return db
}

func seedTwoOffices(t *testing.T, db *gorm.DB) (uuid.UUID, uuid.UUID) {
	officeA := uuid.New()
	officeB := uuid.New()

	rows := []scopedRecord{
		{ID: uuid.New(), OfficeID: officeA, Name: "a1"},
		{ID: uuid.New(), OfficeID: officeA, Name: "a2"},
		{ID: uuid.New(), OfficeID: officeB, Name: "b1"},
	}
	require.NoError(t, db.Create(&rows).Error)

	return officeA, officeB
}

func TestOfficeScope(t *testing.T) {
	db := setupScopeTestDB(t)
	officeA, officeB := seedTwoOffices(t, db)

	var results []scopedRecord
	err := db.Scopes(OfficeScope(officeA)).Find(&results).Error
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results = nil
	err = db.Scopes(OfficeScope(officeB)).Find(&results).Error
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "b1", results[0].Name)
}

func TestOfficeScopeString(t *testing.T) {
	db := setupScopeTestDB(t)
	officeA, _ := seedTwoOffices(t, db)

	var results []scopedRecord
	err := db.Scopes(OfficeScopeString(officeA.String())).Find(&results).Error
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestOfficeDB_WithContext(t *testing.T) {
	db := setupScopeTestDB(t)
	officeA, _ := seedTwoOffices(t, db)
	officeDB := NewOfficeDB(db)

	t.Run("scopes to office from context", func(t *testing.T) {
		ctx, _ := logger.WithOfficeID(context.Background(), logger.FromContext(context.Background()), officeA.String())

		var results []scopedRecord
		err := officeDB.WithContext(ctx).Find(&results).Error
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("errors when office missing and required", func(t *testing.T) {
		var results []scopedRecord
		err := officeDB.WithContext(context.Background()).Find(&results).Error
		assert.ErrorIs(t, err, ErrOfficeIDRequired)
	})

	t.Run("errors on malformed office id", func(t *testing.T) {
		ctx, _ := logger.WithOfficeID(context.Background(), logger.FromContext(context.Background()), "not-a-uuid")

		var results []scopedRecord
		err := officeDB.WithContext(ctx).Find(&results).Error
		assert.ErrorIs(t, err, ErrInvalidOfficeID)
	})

	t.Run("optional mode passes through without office", func(t *testing.T) {
		optional := officeDB.SetRequired(false)

		var results []scopedRecord
		err := optional.WithContext(context.Background()).Find(&results).Error
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}

func TestOfficeDB_WithOffice(t *testing.T) {
	db := setupScopeTestDB(t)
	officeA, _ := seedTwoOffices(t, db)
	officeDB := NewOfficeDB(db)

	var results []scopedRecord
	err := officeDB.WithOffice(officeA).Find(&results).Error
	require.NoError(t, err)
	assert.Len(t, results, 2)

	err = officeDB.WithOffice(uuid.Nil).Find(&results).Error
	assert.ErrorIs(t, err, ErrOfficeIDRequired)
}
