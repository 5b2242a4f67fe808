package reminders

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/metrics"
)

// Sender delivers one message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// NormalizePhone strips everything but digits and requires 10 of them.
func NormalizePhone(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if len(digits) != 10 {
		return "", fmt.Errorf("%w: %q", generic.ErrInvalidPhone, raw)
	}
	return digits, nil
}

// Failure is one reminder that could not be delivered.
type Failure struct {
	ReminderID string            `json:"reminder_id"`
	AccountID  generic.CitizenID `json:"account_id"`
	Error      string            `json:"error"`
}

// BatchResult summarizes a dispatch run.
type BatchResult struct {
	Total    int       `json:"total"`
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

func (b BatchResult) String() string {
	return fmt.Sprintf("Reminders sent: %d successful, %d failed", b.Sent, b.Failed)
}

// Dispatcher sends reminders through a Sender at a bounded rate.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewDispatcher builds a dispatcher allowing perSecond messages with the
// given burst. logger and m may be nil.
func NewDispatcher(sender Sender, perSecond float64, burst int, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
		metrics: m,
	}
}

// Dispatch sends every reminder in order. A failed send is counted and
// the batch continues; only context cancellation stops it early.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []Reminder) (BatchResult, error) {
	res := BatchResult{Total: len(batch)}

	for _, r := range batch {
		if err := d.limiter.Wait(ctx); err != nil {
			return res, err
		}

		id, err := d.send(ctx, r)
		d.metrics.ObserveReminder(err)
		if err != nil {
			res.Failed++
			res.Failures = append(res.Failures, Failure{ReminderID: r.ID, AccountID: r.AccountID, Error: err.Error()})
			d.logger.Warn("Reminder failed",
				zap.String("reminder_id", r.ID),
				zap.String("account_id", string(r.AccountID)),
				zap.Error(err))
			continue
		}

		res.Sent++
		d.logger.Info("Reminder sent",
			zap.String("reminder_id", r.ID),
			zap.String("account_id", string(r.AccountID)),
			zap.String("provider_id", id))
	}
	return res, nil
}

func (d *Dispatcher) send(ctx context.Context, r Reminder) (string, error) {
	return d.deliver(ctx, r.Phone, r.Message)
}

// Notify sends a single message outside any batch, waiting on the same
// rate limit as Dispatch. It returns the provider's message ID.
func (d *Dispatcher) Notify(ctx context.Context, phone, message string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}
	id, err := d.deliver(ctx, phone, message)
	d.metrics.ObserveReminder(err)
	return id, err
}

func (d *Dispatcher) deliver(ctx context.Context, phone, message string) (string, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	return d.sender.Send(ctx, normalized, message)
}

// LogSender writes messages to the log instead of an SMS gateway.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(ctx context.Context, phone, message string) (string, error) {
	id := "log-" + uuid.NewString()
	s.Logger.Info("SMS",
		zap.String("to", "+91 "+phone),
		zap.Int("length", len(message)),
		zap.String("message", message),
		zap.String("id", id))
	return id, nil
}
