package http_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"library-circulation/internal/domain"
	"library-circulation/internal/service"
)

type MockCirculationService struct {
	mock.Mock
}

func (m *MockCirculationService) receipt(args mock.Arguments) (*domain.Receipt, error) {
	if r := args.Get(0); r != nil {
		return r.(*domain.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCirculationService) SubmitReservation(ctx context.Context, req service.IntentRequest) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, req))
}

func (m *MockCirculationService) SubmitLoanRequest(ctx context.Context, req service.IntentRequest) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, req))
}

func (m *MockCirculationService) SubmitLoanCancellationRequest(ctx context.Context, req service.IntentRequest) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, req))
}

func (m *MockCirculationService) SubmitReservationCancellation(ctx context.Context, req service.IntentRequest) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, req))
}

func (m *MockCirculationService) ConfirmReservation(ctx context.Context, userID, bookID int32) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, userID, bookID))
}

func (m *MockCirculationService) ConfirmLoan(ctx context.Context, userID, bookID int32, dueDate *time.Time) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, userID, bookID, dueDate))
}

func (m *MockCirculationService) ConfirmLoanCancellation(ctx context.Context, userID, bookID int32) (*domain.Receipt, error) {
	return m.receipt(m.Called(ctx, userID, bookID))
}

func (m *MockCirculationService) FindPendingAction(ctx context.Context, userID, bookID int32, actionType domain.ActionType) (*domain.PendingAction, error) {
	args := m.Called(ctx, userID, bookID, actionType)
	if a := args.Get(0); a != nil {
		return a.(*domain.PendingAction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCirculationService) GetPendingAction(ctx context.Context, id int32) (*domain.PendingAction, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*domain.PendingAction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCirculationService) ListPendingActions(ctx context.Context, filter domain.PendingActionFilter, page, pageSize int32) ([]domain.PendingAction, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	actions, _ := args.Get(0).([]domain.PendingAction)
	return actions, args.Get(1).(int32), args.Error(2)
}

func (m *MockCirculationService) ListHistory(ctx context.Context, filter domain.HistoryFilter, page, pageSize int32) ([]domain.HistoryEntry, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	entries, _ := args.Get(0).([]domain.HistoryEntry)
	return entries, args.Get(1).(int32), args.Error(2)
}

func (m *MockCirculationService) RemindOverdueLoans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthTokens, error) {
	args := m.Called(ctx, email, password)
	if t := args.Get(0); t != nil {
		return t.(*service.AuthTokens), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (*service.AuthTokens, error) {
	args := m.Called(ctx, refresh)
	if t := args.Get(0); t != nil {
		return t.(*service.AuthTokens), args.Error(1)
	}
	return nil, args.Error(1)
}
