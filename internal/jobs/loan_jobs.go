package jobs

import (
	"context"

	"library-circulation/internal/logger"
)

// SendOverdueReminders emails every borrower whose loan is past its due date
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func(ctx context.Context) {
		count, err := jr.services.Circulation.RemindOverdueLoans(ctx)
		if err != nil {
			logger.Error("Failed to send overdue reminders", "error", err)
			return
		}
		logger.Info("Processed overdue loans", "count", count)
	})
}
