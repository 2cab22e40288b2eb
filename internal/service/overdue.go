package service

import (
	"context"
	"fmt"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type overdueLoan struct {
	user domain.User
	book domain.Book
}

func (s *circulationService) RemindOverdueLoans(ctx context.Context) (int, error) {
	logger.EnterMethod("circulationService.RemindOverdueLoans")

	var loans []overdueLoan
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		books, err := tx.Books().ListOverdue(ctx, s.cfg.Now().UTC())
		if err != nil {
			return err
		}
		for _, b := range books {
			user, err := tx.Users().GetByID(ctx, *b.UserIDTaken)
			if err != nil {
				return fmt.Errorf("failed to load borrower of book %d: %w", b.ID, err)
			}
			loans = append(loans, overdueLoan{user: *user, book: b})
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService.RemindOverdueLoans", err, false)
		return 0, err
	}

	sent := 0
	for _, l := range loans {
		if err := s.emailSvc.SendOverdueReminder(ctx, l.user.Email, displayName(&l.user), l.book.Name, *l.book.DateFinishUse); err != nil {
			logger.WarnContext(ctx, "Failed to send overdue reminder", "userID", l.user.ID, "bookID", l.book.ID, "error", err)
			continue
		}
		sent++
	}

	logger.Info("Overdue reminders processed", "overdue", len(loans), "sent", sent)
	logger.ExitMethod("circulationService.RemindOverdueLoans", "overdue", len(loans))
	return len(loans), nil
}
