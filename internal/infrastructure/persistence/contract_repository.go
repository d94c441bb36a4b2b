package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/leasing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/office"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByIDForOffice finds a contract by ID within an office
func (r *GormContractRepository) FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*leasing.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Scopes(office.OfficeScope(officeID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOffice finds all contracts for an office
func (r *GormContractRepository) FindAllForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]leasing.Contract, error) {
	var rows []models.ContractModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).Scopes(office.OfficeScope(officeID)),
		filter,
		"start_date DESC",
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	contracts := make([]leasing.Contract, len(rows))
	for i := range rows {
		contracts[i] = *rows[i].ToDomain()
	}
	return contracts, nil
}

// CountForOffice counts contracts for an office
func (r *GormContractRepository) CountForOffice(ctx context.Context, officeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Scopes(office.OfficeScope(officeID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *leasing.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilter applies pagination and ordering to the query
func applyFilter(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else if defaultOrder != "" {
		query = query.Order(defaultOrder)
	}

	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ leasing.ContractRepository = (*GormContractRepository)(nil)
