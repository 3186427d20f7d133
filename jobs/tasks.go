package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/askhub/askhub/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// MailHandler processes TaskTypeSendEmail tasks with an SMTP sender.
type MailHandler struct {
	sender *mail.Sender
	logger *slog.Logger
}

// NewMailHandler constructs a MailHandler.
func NewMailHandler(sender *mail.Sender, logger *slog.Logger) *MailHandler {
	return &MailHandler{sender: sender, logger: logger}
}

// HandleSendEmail delivers one queued message. A malformed payload skips
// retries; SMTP errors are returned so Asynq retries transient failures.
func (h *MailHandler) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := h.sender.Send(payload.To, payload.Subject, payload.Body); err != nil {
		h.logger.Warn("send email", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	h.logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}
