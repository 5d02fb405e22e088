package ports

import (
	"context"
	"time"

	"elect/contexts/election-operations/voting-engine/domain/entities"
	contractsv1 "elect/contracts/gen/events/v1"
)

// ElectionRepository reads election rows and applies the scheduler's status
// transitions. Transitions are per-row compare-and-set so concurrent ticks
// recomputing the same target are no-ops.
type ElectionRepository interface {
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElectionsByStatus(ctx context.Context, statuses []entities.ElectionStatus) ([]entities.Election, error)
	ListElections(ctx context.Context) ([]entities.Election, error)
	// TransitionStatus moves electionID from `from` to `to` only if the stored
	// status still equals `from`. Returns false when another writer got there
	// first (not an error).
	TransitionStatus(ctx context.Context, electionID string, from, to entities.ElectionStatus, updatedAt time.Time) (bool, error)
	// ForceStatus overwrites the stored status regardless of current value.
	// Returns false when the row already carried `to`.
	ForceStatus(ctx context.Context, electionID string, to entities.ElectionStatus, updatedAt time.Time) (bool, error)
}

// VoterRepository is read-only eligibility data owned by registration.
type VoterRepository interface {
	GetVoter(ctx context.Context, electionID string, voterID string) (entities.Voter, bool, error)
	CountVerifiedVoters(ctx context.Context, electionID string) (int64, error)
}

// ParticipationResult is the finalizer's write-back for one participation row.
type ParticipationResult struct {
	CandidateID string
	Rank        int
	HasWon      bool
}

// ParticipationRepository owns candidate enrollment rows and their tallies.
type ParticipationRepository interface {
	ListParticipations(ctx context.Context, electionID string) ([]entities.CandidateParticipation, error)
	// SaveResults overwrites rank/has_won on every listed row. Idempotent:
	// rewriting identical results is a no-op semantically.
	SaveResults(ctx context.Context, electionID string, results []ParticipationResult, updatedAt time.Time) (int, error)
}

// BallotRepository owns the ballot records and the atomic commit unit.
type BallotRepository interface {
	// CommitBallot atomically inserts the ballot, increments vote_count on each
	// selected participation row, and increments the election's total vote
	// count, returning the new total. A uniqueness violation on
	// (election_id, voter_id) surfaces as ErrAlreadyVoted; an increment that
	// matches no participation row aborts the unit with
	// ErrCandidateNotParticipating. No partial effects survive a failure.
	CommitBallot(ctx context.Context, ballot entities.Ballot) (int64, error)
	GetBallotByVoter(ctx context.Context, electionID string, voterID string) (entities.Ballot, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter appends events inside the store for later relay.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
