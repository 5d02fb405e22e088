package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "elect/contexts/election-operations/voting-engine/application"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	"elect/contexts/election-operations/voting-engine/ports"
)

// CastVoteCommand is the write-model input for ballot casting.
type CastVoteCommand struct {
	ElectionID   string
	VoterID      string
	CandidateIDs []string
}

// VoteUseCase is the voting transaction engine: it validates a ballot request
// in a fixed order and commits it exactly once through the store's atomic
// unit. The double-vote guarantee lives in the store (unique constraint on
// voter+election at insert time), never in the pre-read check here.
type VoteUseCase struct {
	Elections      ports.ElectionRepository
	Voters         ports.VoterRepository
	Participations ports.ParticipationRepository
	Ballots        ports.BallotRepository
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

// CastVote commits one ballot or rejects it with a specific domain error.
// Rejections leave no partial effects; a rejected or timed-out request is
// safe to retry as a whole.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.BallotReceipt, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	voterID := strings.TrimSpace(cmd.VoterID)
	logger.Info("vote cast processing started",
		"event", "election_vote_cast_started",
		"module", "election-operations/voting-engine",
		"layer", "application",
		"election_id", electionID,
		"voter_id", voterID,
		"selection_count", len(cmd.CandidateIDs),
	)
	if electionID == "" || voterID == "" {
		logger.Warn("vote cast validation failed",
			"event", "election_vote_cast_validation_failed",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"election_id", electionID,
			"voter_id", voterID,
		)
		return entities.BallotReceipt{}, domainerrors.ErrInvalidVoteInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.BallotReceipt{}, err
	}

	// The stored status may lag a scheduler tick; admission is decided from
	// the clock, which is the authoritative status function.
	now := uc.now()
	if election.StatusAt(now) != entities.ElectionStatusRunning {
		logger.Warn("vote rejected outside voting window",
			"event", "election_vote_cast_not_running",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"election_id", electionID,
			"voter_id", voterID,
			"stored_status", string(election.Status),
		)
		return entities.BallotReceipt{}, domainerrors.ErrElectionNotRunning
	}

	voter, found, err := uc.Voters.GetVoter(ctx, electionID, voterID)
	if err != nil {
		return entities.BallotReceipt{}, err
	}
	if !found || !voter.Verified {
		return entities.BallotReceipt{}, domainerrors.ErrVoterNotEligible
	}

	// Fail fast on an existing ballot; the commit below re-enforces this
	// under the store's uniqueness constraint.
	if _, voted, err := uc.Ballots.GetBallotByVoter(ctx, electionID, voterID); err != nil {
		return entities.BallotReceipt{}, err
	} else if voted {
		return entities.BallotReceipt{}, domainerrors.ErrAlreadyVoted
	}

	candidateIDs, err := normalizeSelection(cmd.CandidateIDs, election.VotesPerVoter)
	if err != nil {
		logger.Warn("vote rejected for malformed ballot",
			"event", "election_vote_cast_invalid_ballot",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"election_id", electionID,
			"voter_id", voterID,
			"selection_count", len(cmd.CandidateIDs),
			"votes_per_voter", election.VotesPerVoter,
		)
		return entities.BallotReceipt{}, err
	}

	participations, err := uc.Participations.ListParticipations(ctx, electionID)
	if err != nil {
		return entities.BallotReceipt{}, err
	}
	enrolled := make(map[string]struct{}, len(participations))
	for _, participation := range participations {
		enrolled[participation.CandidateID] = struct{}{}
	}
	for _, candidateID := range candidateIDs {
		if _, ok := enrolled[candidateID]; !ok {
			return entities.BallotReceipt{}, domainerrors.ErrCandidateNotParticipating
		}
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.BallotReceipt{}, err
	}
	ballot := entities.Ballot{
		BallotID:     ballotID,
		ElectionID:   electionID,
		VoterID:      voterID,
		CandidateIDs: candidateIDs,
		CreatedAt:    now,
	}
	newTotal, err := uc.Ballots.CommitBallot(ctx, ballot)
	if err != nil {
		return entities.BallotReceipt{}, err
	}

	receipt := entities.BallotReceipt{
		BallotID:       ballot.BallotID,
		ElectionID:     electionID,
		VoterID:        voterID,
		CastAt:         ballot.CreatedAt,
		TotalVoteCount: newTotal,
	}
	uc.appendReceiptEvent(ctx, receipt)

	logger.Info("vote committed",
		"event", "election_vote_committed",
		"module", "election-operations/voting-engine",
		"layer", "application",
		"election_id", electionID,
		"voter_id", voterID,
		"ballot_id", ballot.BallotID,
		"total_vote_count", newTotal,
	)
	return receipt, nil
}

// VotingStatus reports whether the voter has a committed ballot and the
// ballot size the election expects.
func (uc VoteUseCase) VotingStatus(ctx context.Context, electionID string, voterID string) (entities.VotingStatus, error) {
	electionID = strings.TrimSpace(electionID)
	voterID = strings.TrimSpace(voterID)
	if electionID == "" || voterID == "" {
		return entities.VotingStatus{}, domainerrors.ErrInvalidVoteInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.VotingStatus{}, err
	}
	_, voted, err := uc.Ballots.GetBallotByVoter(ctx, electionID, voterID)
	if err != nil {
		return entities.VotingStatus{}, err
	}
	return entities.VotingStatus{
		ElectionID:   electionID,
		VoterID:      voterID,
		HasVoted:     voted,
		VotesAllowed: election.VotesPerVoter,
	}, nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// appendReceiptEvent is fire-and-forget: the broadcaster is an optional
// collaborator and must never affect commit correctness.
func (uc VoteUseCase) appendReceiptEvent(ctx context.Context, receipt entities.BallotReceipt) {
	if uc.Outbox == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("ballot receipt event id generation failed",
			"event", "election_receipt_event_id_failed",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"ballot_id", receipt.BallotID,
			"error", err.Error(),
		)
		return
	}
	envelope, err := newElectionEnvelope(eventID, "ballot.accepted", receipt.ElectionID, receipt.CastAt, map[string]any{
		"ballot_id":        receipt.BallotID,
		"election_id":      receipt.ElectionID,
		"voter_id":         receipt.VoterID,
		"cast_at":          receipt.CastAt.Format(time.RFC3339),
		"total_vote_count": receipt.TotalVoteCount,
	})
	if err == nil {
		err = uc.Outbox.AppendOutbox(ctx, envelope)
	}
	if err != nil {
		logger.Warn("ballot receipt event append failed",
			"event", "election_receipt_event_append_failed",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"ballot_id", receipt.BallotID,
			"election_id", receipt.ElectionID,
			"error", err.Error(),
		)
	}
}

// normalizeSelection trims ids and enforces exact ballot size. Duplicate ids
// are rejected, not deduplicated.
func normalizeSelection(candidateIDs []string, votesPerVoter int) ([]string, error) {
	if len(candidateIDs) != votesPerVoter {
		return nil, domainerrors.ErrInvalidBallotSize
	}
	seen := make(map[string]struct{}, len(candidateIDs))
	normalized := make([]string, 0, len(candidateIDs))
	for _, raw := range candidateIDs {
		candidateID := strings.TrimSpace(raw)
		if candidateID == "" {
			return nil, domainerrors.ErrInvalidBallotSize
		}
		if _, dup := seen[candidateID]; dup {
			return nil, domainerrors.ErrInvalidBallotSize
		}
		seen[candidateID] = struct{}{}
		normalized = append(normalized, candidateID)
	}
	return normalized, nil
}
