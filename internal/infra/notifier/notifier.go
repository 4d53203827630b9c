package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"condo-booking/internal/domain/notification"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInternal         = errs.New("notifier: internal error")
	ErrDeliveryRejected = errs.New("notifier: delivery rejected")
)

// New picks the implementation named by NOTIFIER_KIND.
func New(cfg config.Config, logger *slog.Logger) (notification.Notifier, error) {
	switch cfg.Notifier.Kind {
	case "log":
		return NewLogNotifier(logger), nil
	case "webhook":
		return NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout), nil
	default:
		return nil, errs.Newf("unknown notifier kind %q", cfg.Notifier.Kind)
	}
}

// LogNotifier writes each delivery to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, kind notification.TemplateKind, data map[string]any) error {
	n.logger.InfoContext(ctx, "notification delivered",
		"user_id", userID,
		"template", string(kind),
		"data", data,
	)
	return nil
}

type webhookMessage struct {
	UserID   uuid.UUID      `json:"user_id"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
	SentAt   time.Time      `json:"sent_at"`
}

// WebhookNotifier POSTs a JSON message; any non-2xx answer is a failed delivery.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, userID uuid.UUID, kind notification.TemplateKind, data map[string]any) error {
	body, err := json.Marshal(webhookMessage{
		UserID:   userID,
		Template: string(kind),
		Data:     data,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return errs.Mark(errs.Wrap(err, "failed to encode message"), ErrInternal)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errs.Mark(errs.Wrap(err, "failed to create request"), ErrInternal)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "failed to execute request"), ErrInternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.Wrapf(ErrDeliveryRejected, "unexpected status code %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
