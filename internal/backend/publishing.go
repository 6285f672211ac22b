package backend

import (
	"context"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/sheets"
)

// Publisher sends mirror events. *amqp.Client satisfies it.
type Publisher interface {
	PublishRowEvent(ctx context.Context, ev *amqp.RowEvent) error
}

// PublishingStore forwards every call to the wrapped store and, after a
// successful write, publishes the matching RowEvent. Publish failures are
// logged and never returned.
type PublishingStore struct {
	sheets.Store
	publisher Publisher
	logger    *slog.Logger
}

var _ sheets.Store = (*PublishingStore)(nil)

func NewPublishingStore(next sheets.Store, publisher Publisher, logger *slog.Logger) *PublishingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingStore{Store: next, publisher: publisher, logger: logger}
}

func (s *PublishingStore) Append(ctx context.Context, name string, rec sheets.Record) error {
	if err := s.Store.Append(ctx, name, rec); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewAppendEvent(name, rec.Clone()))
	return nil
}

func (s *PublishingStore) ClearAndRewrite(ctx context.Context, name string, recs []sheets.Record) error {
	if err := s.Store.ClearAndRewrite(ctx, name, recs); err != nil {
		return err
	}
	copies := make([]sheets.Record, len(recs))
	for i, r := range recs {
		copies[i] = r.Clone()
	}
	s.publish(ctx, amqp.NewRewriteEvent(name, copies))
	return nil
}

func (s *PublishingStore) publish(ctx context.Context, ev *amqp.RowEvent) {
	if err := s.publisher.PublishRowEvent(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish mirror event",
			"error", err,
			"id", ev.ID,
			"kind", ev.Kind,
			"table", ev.Table)
	}
}
