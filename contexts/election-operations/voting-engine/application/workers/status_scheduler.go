package workers

import (
	"context"
	"log/slog"
	"time"

	application "elect/contexts/election-operations/voting-engine/application"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	"elect/contexts/election-operations/voting-engine/ports"
)

// StatusScheduler keeps stored election statuses aligned with the clock. Each
// row is transitioned independently through a compare-and-set, so a failed or
// concurrent pass never leaves a row in an invalid status and rerunning a
// pass with the same inputs changes nothing.
type StatusScheduler struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Tick scans elections still in upcoming/running and advances each whose
// target status differs from the stored one, returning the number changed.
// Per-election failures are logged and skipped so one bad row cannot stall
// the rest; they retry on the next tick.
//
// An election discovered past its end while still upcoming moves directly to
// finished: no transient running status is written and no start event fires.
func (s StatusScheduler) Tick(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(s.Logger)
	elections, err := s.Elections.ListElectionsByStatus(ctx, []entities.ElectionStatus{
		entities.ElectionStatusUpcoming,
		entities.ElectionStatusRunning,
	})
	if err != nil {
		logger.Error("status tick scan failed",
			"event", "election_status_tick_scan_failed",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	now := s.now()
	updated := 0
	for _, election := range elections {
		target := election.StatusAt(now)
		if target == election.Status {
			continue
		}
		changed, err := s.Elections.TransitionStatus(ctx, election.ElectionID, election.Status, target, now)
		if err != nil {
			logger.Error("status transition failed",
				"event", "election_status_transition_failed",
				"module", "election-operations/voting-engine",
				"layer", "worker",
				"election_id", election.ElectionID,
				"from", string(election.Status),
				"to", string(target),
				"error", err.Error(),
			)
			continue
		}
		if !changed {
			// Another tick won the compare-and-set; same target, nothing lost.
			continue
		}
		updated++
		s.appendTransitionEvent(ctx, election, target, now)
		logger.Info("election status advanced",
			"event", "election_status_advanced",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"election_id", election.ElectionID,
			"from", string(election.Status),
			"to", string(target),
		)
	}
	return updated, nil
}

// SyncAll repairs drift by forcing every election's stored status to its
// computed value, regardless of what is currently stored.
func (s StatusScheduler) SyncAll(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(s.Logger)
	elections, err := s.Elections.ListElections(ctx)
	if err != nil {
		logger.Error("status sync scan failed",
			"event", "election_status_sync_scan_failed",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	now := s.now()
	updated := 0
	for _, election := range elections {
		target := election.StatusAt(now)
		changed, err := s.Elections.ForceStatus(ctx, election.ElectionID, target, now)
		if err != nil {
			logger.Error("status force failed",
				"event", "election_status_force_failed",
				"module", "election-operations/voting-engine",
				"layer", "worker",
				"election_id", election.ElectionID,
				"to", string(target),
				"error", err.Error(),
			)
			continue
		}
		if changed {
			updated++
			s.appendTransitionEvent(ctx, election, target, now)
		}
	}
	logger.Info("status sync completed",
		"event", "election_status_sync_completed",
		"module", "election-operations/voting-engine",
		"layer", "worker",
		"scanned", len(elections),
		"updated", updated,
	)
	return updated, nil
}

func (s StatusScheduler) now() time.Time {
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	return now
}

func (s StatusScheduler) appendTransitionEvent(
	ctx context.Context,
	election entities.Election,
	target entities.ElectionStatus,
	occurredAt time.Time,
) {
	if s.Outbox == nil {
		return
	}
	logger := application.ResolveLogger(s.Logger)
	eventType := "election.started"
	if target == entities.ElectionStatusFinished {
		eventType = "election.finished"
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("transition event id generation failed",
			"event", "election_transition_event_id_failed",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"election_id", election.ElectionID,
			"error", err.Error(),
		)
		return
	}
	envelope, err := newSchedulerEnvelope(eventID, eventType, election.ElectionID, occurredAt, map[string]any{
		"election_id": election.ElectionID,
		"from":        string(election.Status),
		"to":          string(target),
		"starts_at":   election.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":     election.EndsAt.UTC().Format(time.RFC3339),
	})
	if err == nil {
		err = s.Outbox.AppendOutbox(ctx, envelope)
	}
	if err != nil {
		// Lifecycle events feed notifications only; the transition itself is
		// already committed.
		logger.Warn("transition event append failed",
			"event", "election_transition_event_append_failed",
			"module", "election-operations/voting-engine",
			"layer", "worker",
			"election_id", election.ElectionID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
