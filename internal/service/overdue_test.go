package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/domain"
	"library-circulation/internal/service"
)

func TestRemindOverdueLoans(t *testing.T) {
	email := quietEmail()
	f := newFixtureWithEmail(t, email)
	ctx := context.Background()
	due := f.clock.Now().Add(7 * 24 * time.Hour)

	for _, name := range []string{"Ann", "Bob"} {
		book := map[string]string{"Ann": "Dune", "Bob": "Solaris"}[name]
		_, err := f.svc.SubmitLoanRequest(ctx, service.IntentRequest{UserID: f.users[name], BookID: f.books[book]})
		require.NoError(t, err)
	}
	_, err := f.svc.ConfirmLoan(ctx, f.users["Ann"], f.books["Dune"], &due)
	require.NoError(t, err)
	_, err = f.svc.ConfirmLoan(ctx, f.users["Bob"], f.books["Solaris"], nil)
	require.NoError(t, err)

	count, err := f.svc.RemindOverdueLoans(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	f.clock.Advance(8 * 24 * time.Hour)
	count, err = f.svc.RemindOverdueLoans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	email.AssertCalled(t, "SendOverdueReminder", mock.Anything, "ann@example.com", "Ann Lee", "Dune", due)
	email.AssertNotCalled(t, "SendOverdueReminder", mock.Anything, "bob@example.com", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemindOverdueLoans_SendFailureIsNotFatal(t *testing.T) {
	email := new(MockEmailService)
	email.On("SendLoanConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	email.On("SendOverdueReminder", mock.Anything, "ann@example.com", mock.Anything, "Dune", mock.Anything).Return(errors.New("rate limited"))
	f := newFixtureWithEmail(t, email)
	ctx := context.Background()

	_, err := f.svc.SubmitLoanRequest(ctx, service.IntentRequest{UserID: f.users["Ann"], BookID: f.books["Dune"]})
	require.NoError(t, err)
	_, err = f.svc.ConfirmLoan(ctx, f.users["Ann"], f.books["Dune"], nil)
	require.NoError(t, err)

	f.clock.Advance(service.DefaultLoanPeriod + time.Hour)
	count, err := f.svc.RemindOverdueLoans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	email.AssertExpectations(t)
}

func TestLookup_PendingActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.SubmitReservation(ctx, service.IntentRequest{UserID: f.users["Ann"], BookID: f.books["Dune"]})
	require.NoError(t, err)
	_, err = f.svc.SubmitLoanRequest(ctx, service.IntentRequest{UserID: f.users["Ann"], BookID: f.books["Solaris"]})
	require.NoError(t, err)
	_, err = f.svc.SubmitReservation(ctx, service.IntentRequest{UserID: f.users["Bob"], BookID: f.books["Dune"]})
	require.NoError(t, err)

	got, err := f.svc.GetPendingAction(ctx, first.Action.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Action, *got)

	_, err = f.svc.GetPendingAction(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, total, err := f.svc.ListPendingActions(ctx, domain.PendingActionFilter{ActionType: domain.ActionTypeReserve}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, first.Action.ID, page[0].ID)

	page, total, err = f.svc.ListPendingActions(ctx, domain.PendingActionFilter{UserID: f.users["Ann"]}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), total)
	assert.Len(t, page, 2)
}

func TestLookup_PageBeyondLastRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitReservation(ctx, service.IntentRequest{UserID: f.users["Ann"], BookID: f.books["Dune"]})
	require.NoError(t, err)

	page, total, err := f.svc.ListPendingActions(ctx, domain.PendingActionFilter{}, math.MaxInt32/50, 100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Empty(t, page)

	entries, _, err := f.svc.ListHistory(ctx, domain.HistoryFilter{}, math.MaxInt32, 100)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
