package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "elect/contexts/election-operations/voting-engine/application"
	"elect/contexts/election-operations/voting-engine/ports"
)

// EventRelay publishes persisted outbox records (ballot receipts and election
// lifecycle transitions) to the event bus for external broadcasters and
// notification services.
type EventRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after the bus publish succeeds. It stops on the first
// failure so the retry loop can reprocess remaining rows safely.
func (r EventRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("event relay outbox list failed",
			"event", "election_relay_list_failed",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("event relay found no pending rows",
			"event", "election_relay_noop",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("event relay decode failed",
				"event", "election_relay_decode_failed",
				"module", "election-operations/voting-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("event relay publish failed",
				"event", "election_relay_publish_failed",
				"module", "election-operations/voting-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("event relay mark published failed",
				"event", "election_relay_mark_published_failed",
				"module", "election-operations/voting-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("event relay cycle completed",
		"event", "election_relay_completed",
		"module", "election-operations/voting-engine",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
