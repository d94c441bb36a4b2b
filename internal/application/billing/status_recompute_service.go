package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// defaultSweepBatchSize bounds the page size of the daily status sweep
const defaultSweepBatchSize = 500

// RecomputeResult summarizes one sweep run
type RecomputeResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

// StatusRecomputeService runs the daily cross-office sweep that re-derives
// date-derived installment statuses (UPCOMING, DUE_TODAY, OVERDUE) against the
// current day. Payment-derived and agreement statuses are never touched.
type StatusRecomputeService struct {
	installmentRepo billing.InstallmentRepository
	logger          *zap.Logger
	batchSize       int
}

// NewStatusRecomputeService creates a new StatusRecomputeService
func NewStatusRecomputeService(
	installmentRepo billing.InstallmentRepository,
	logger *zap.Logger,
) *StatusRecomputeService {
	return &StatusRecomputeService{
		installmentRepo: installmentRepo,
		logger:          logger,
		batchSize:       defaultSweepBatchSize,
	}
}

// SetBatchSize overrides the sweep page size (tests use a small one)
func (s *StatusRecomputeService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// RecomputeAll pages through every date-derived installment across all
// offices, ordered by id, re-classifying each against today's UTC date. The
// sweep keys on UTC while interactive reads key on the office's local day; on
// the boundary hours the two can disagree until the next run.
//
// Each page's flips are persisted as a batch. A mid-run failure leaves prior
// pages committed; the sweep is idempotent so the next run converges.
func (s *StatusRecomputeService) RecomputeAll(ctx context.Context) (*RecomputeResult, error) {
	today := time.Now().UTC()
	result := &RecomputeResult{}
	cursor := uuid.Nil

	for {
		page, err := s.installmentRepo.FindDateDerivedPage(ctx, cursor, s.batchSize)
		if err != nil {
			s.logger.Error("status sweep page fetch failed",
				zap.String("cursor", cursor.String()),
				zap.Error(err),
			)
			return result, err
		}
		if len(page) == 0 {
			break
		}

		updates := make([]billing.StatusUpdate, 0, len(page))
		for idx := range page {
			installment := &page[idx]
			if installment.RefreshDateStatus(today) {
				updates = append(updates, billing.StatusUpdate{
					ID:     installment.ID,
					Status: installment.Status,
				})
			}
		}
		result.Scanned += len(page)

		if len(updates) > 0 {
			if err := s.installmentRepo.UpdateStatuses(ctx, updates); err != nil {
				s.logger.Error("status sweep batch update failed",
					zap.Int("batch_size", len(updates)),
					zap.Error(err),
				)
				return result, err
			}
			result.Updated += len(updates)
		}

		cursor = page[len(page)-1].ID
		if len(page) < s.batchSize {
			break
		}
	}

	s.logger.Info("status sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
	)

	return result, nil
}
