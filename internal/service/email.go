package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"library-circulation/internal/logger"
)

const dueDateLayout = "Monday, 2 January 2006"

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

// NewEmailService sends through SendGrid. With an empty apiKey it only logs
// the messages it would have sent.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return &logEmailService{}
	}
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "send", nil, "status", response.StatusCode)
	return nil
}

func (s *emailService) SendReservationConfirmed(ctx context.Context, email, name, bookName string) error {
	subject, body := reservationConfirmedMessage(name, bookName)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendReservationCancelled(ctx context.Context, email, name, bookName string) error {
	subject, body := reservationCancelledMessage(name, bookName)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendLoanConfirmed(ctx context.Context, email, name, bookName string, due time.Time) error {
	subject, body := loanConfirmedMessage(name, bookName, due)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendLoanReturned(ctx context.Context, email, name, bookName string) error {
	subject, body := loanReturnedMessage(name, bookName)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, bookName string, due time.Time) error {
	subject, body := overdueReminderMessage(name, bookName, due)
	return s.send(ctx, email, name, subject, body)
}

// logEmailService is used when no SendGrid key is configured.
type logEmailService struct{}

func (s *logEmailService) log(ctx context.Context, email, subject string) error {
	logger.InfoContext(ctx, "Email not sent, no provider configured", "to", email, "subject", subject)
	return nil
}

func (s *logEmailService) SendReservationConfirmed(ctx context.Context, email, name, bookName string) error {
	subject, _ := reservationConfirmedMessage(name, bookName)
	return s.log(ctx, email, subject)
}

func (s *logEmailService) SendReservationCancelled(ctx context.Context, email, name, bookName string) error {
	subject, _ := reservationCancelledMessage(name, bookName)
	return s.log(ctx, email, subject)
}

func (s *logEmailService) SendLoanConfirmed(ctx context.Context, email, name, bookName string, due time.Time) error {
	subject, _ := loanConfirmedMessage(name, bookName, due)
	return s.log(ctx, email, subject)
}

func (s *logEmailService) SendLoanReturned(ctx context.Context, email, name, bookName string) error {
	subject, _ := loanReturnedMessage(name, bookName)
	return s.log(ctx, email, subject)
}

func (s *logEmailService) SendOverdueReminder(ctx context.Context, email, name, bookName string, due time.Time) error {
	subject, _ := overdueReminderMessage(name, bookName, due)
	return s.log(ctx, email, subject)
}

func reservationConfirmedMessage(name, bookName string) (string, string) {
	return fmt.Sprintf("Reservation confirmed: %s", bookName),
		fmt.Sprintf("Hello %s,\n\nYour reservation of \"%s\" has been confirmed by the library.\n\nBest regards,\nThe Library", name, bookName)
}

func reservationCancelledMessage(name, bookName string) (string, string) {
	return fmt.Sprintf("Reservation cancelled: %s", bookName),
		fmt.Sprintf("Hello %s,\n\nYour reservation of \"%s\" has been cancelled.\n\nBest regards,\nThe Library", name, bookName)
}

func loanConfirmedMessage(name, bookName string, due time.Time) (string, string) {
	return fmt.Sprintf("Loan started: %s", bookName),
		fmt.Sprintf("Hello %s,\n\nYou have borrowed \"%s\". Please return it by %s.\n\nBest regards,\nThe Library", name, bookName, due.Format(dueDateLayout))
}

func loanReturnedMessage(name, bookName string) (string, string) {
	return fmt.Sprintf("Loan closed: %s", bookName),
		fmt.Sprintf("Hello %s,\n\nThe return of \"%s\" has been recorded. Thank you.\n\nBest regards,\nThe Library", name, bookName)
}

func overdueReminderMessage(name, bookName string, due time.Time) (string, string) {
	return fmt.Sprintf("Overdue: %s", bookName),
		fmt.Sprintf("Hello %s,\n\n\"%s\" was due on %s. Please return it as soon as possible.\n\nBest regards,\nThe Library", name, bookName, due.Format(dueDateLayout))
}
