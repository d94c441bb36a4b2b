package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// ContractRepository defines persistence operations for contracts
type ContractRepository interface {
	// FindByIDForOffice finds a contract by ID scoped to an office
	FindByIDForOffice(ctx context.Context, officeID, id uuid.UUID) (*Contract, error)
	// FindAllForOffice lists contracts for an office
	FindAllForOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]Contract, error)
	// CountForOffice counts contracts for an office
	CountForOffice(ctx context.Context, officeID uuid.UUID) (int64, error)
	// Save creates or updates a contract
	Save(ctx context.Context, contract *Contract) error
}
