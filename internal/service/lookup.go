package service

import (
	"context"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

const (
	defaultPageSize int32 = 20
	maxPageSize     int32 = 100
)

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (s *circulationService) FindPendingAction(ctx context.Context, userID, bookID int32, actionType domain.ActionType) (*domain.PendingAction, error) {
	var action *domain.PendingAction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		action, err = tx.PendingActions().FindForUpdate(ctx, domain.PendingActionKey{
			UserID:     userID,
			BookID:     bookID,
			ActionType: actionType,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

func (s *circulationService) GetPendingAction(ctx context.Context, id int32) (*domain.PendingAction, error) {
	var action *domain.PendingAction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		action, err = tx.PendingActions().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

func (s *circulationService) ListPendingActions(ctx context.Context, filter domain.PendingActionFilter, page, pageSize int32) ([]domain.PendingAction, int32, error) {
	logger.EnterMethod("circulationService.ListPendingActions", "filter", filter, "page", page, "pageSize", pageSize)
	page, pageSize = normalizePage(page, pageSize)

	var (
		actions []domain.PendingAction
		total   int32
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		actions, total, err = tx.PendingActions().List(ctx, filter, page, pageSize)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService.ListPendingActions", err, false)
		return nil, 0, err
	}

	logger.ExitMethod("circulationService.ListPendingActions", "count", len(actions), "total", total)
	return actions, total, nil
}

func (s *circulationService) ListHistory(ctx context.Context, filter domain.HistoryFilter, page, pageSize int32) ([]domain.HistoryEntry, int32, error) {
	logger.EnterMethod("circulationService.ListHistory", "filter", filter, "page", page, "pageSize", pageSize)
	page, pageSize = normalizePage(page, pageSize)

	var (
		entries []domain.HistoryEntry
		total   int32
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		entries, total, err = tx.History().List(ctx, filter, page, pageSize)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService.ListHistory", err, false)
		return nil, 0, err
	}

	logger.ExitMethod("circulationService.ListHistory", "count", len(entries), "total", total)
	return entries, total, nil
}
