package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	"github.com/samvad-hq/samvad-feed-notifier/internal/logger"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/publishers"
)

// Dispatcher delivers one event to every configured sink and reports how many accepted it.
type Dispatcher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Notifier sends one message per feed item through a Dispatcher.
type Notifier struct {
	dispatcher Dispatcher
	log        logger.Logger
}

// Outcome is the per-item delivery result.
type Outcome struct {
	Item      domain.FeedItem
	Delivered bool
	Err       error
}

// Summary aggregates the outcomes of one NotifyAll pass.
type Summary struct {
	Attempted int
	Delivered int
	Failed    int
	Skipped   int
	Outcomes  []Outcome
}

// New returns a Notifier. A nil or empty dispatcher turns every Notify into a warned skip.
func New(dispatcher Dispatcher, log logger.Logger) *Notifier {
	return &Notifier{
		dispatcher: dispatcher,
		log:        logger.Ensure(log),
	}
}

// FormatMessage renders the plain-text body sent for an item.
func FormatMessage(item domain.FeedItem) string {
	return item.Title + "\n" + item.Link
}

// Notify delivers a single item. Failures are logged and returned in the Outcome, never panicked.
func (n *Notifier) Notify(ctx context.Context, item domain.FeedItem) Outcome {
	out := Outcome{Item: item}
	if n == nil || n.dispatcher == nil || n.dispatcher.Size() == 0 {
		log := logger.Logger(logger.NopLogger{})
		if n != nil {
			log = n.log
		}
		log.WarnObj("no delivery endpoint configured; skipping notification", "notify_skip", map[string]any{
			"link":  item.Link,
			"title": item.Title,
		})
		out.Err = domain.ErrNoEndpoint
		return out
	}

	evt := publishers.NewEvent(item, FormatMessage(item))
	accepted, err := n.dispatcher.Publish(ctx, evt)
	if err != nil {
		out.Err = &domain.DeliveryError{Link: item.Link, Err: err}
		n.logFailure(item, accepted, err)
		return out
	}

	out.Delivered = true
	n.log.InfoObj("notification delivered", "notify_meta", map[string]any{
		"link":     item.Link,
		"source":   item.Source,
		"accepted": accepted,
	})
	return out
}

// NotifyAll notifies every item in order. One failure never stops the rest.
func (n *Notifier) NotifyAll(ctx context.Context, items []domain.FeedItem) Summary {
	sum := Summary{Outcomes: make([]Outcome, 0, len(items))}
	for _, item := range items {
		out := n.Notify(ctx, item)
		sum.Outcomes = append(sum.Outcomes, out)
		switch {
		case out.Delivered:
			sum.Attempted++
			sum.Delivered++
		case errors.Is(out.Err, domain.ErrNoEndpoint):
			sum.Skipped++
		default:
			sum.Attempted++
			sum.Failed++
		}
	}
	return sum
}

// Errors returns the non-nil per-item errors of the summary.
func (s Summary) Errors() []error {
	var errs []error
	for _, out := range s.Outcomes {
		if out.Err != nil {
			errs = append(errs, out.Err)
		}
	}
	return errs
}

func (n *Notifier) logFailure(item domain.FeedItem, accepted int, err error) {
	meta := map[string]any{
		"link":     item.Link,
		"source":   item.Source,
		"accepted": accepted,
		"error":    err.Error(),
	}
	var statusErr *publishers.StatusError
	if errors.As(err, &statusErr) {
		meta["status"] = statusErr.StatusCode
		meta["body"] = statusErr.Body
	}
	n.log.ErrorObj("notification failed", "notify_error", meta)
}

// String renders a one-line summary for CLI output.
func (s Summary) String() string {
	return fmt.Sprintf("attempted=%d delivered=%d failed=%d skipped=%d", s.Attempted, s.Delivered, s.Failed, s.Skipped)
}
