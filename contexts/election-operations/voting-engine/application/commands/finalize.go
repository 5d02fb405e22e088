package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "elect/contexts/election-operations/voting-engine/application"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	"elect/contexts/election-operations/voting-engine/ports"
)

// FinalizeUseCase computes final rank and winner flags for every candidate
// participation of a finished election. The computation is a pure function of
// the final tallies, so repeated runs write identical results.
type FinalizeUseCase struct {
	Elections      ports.ElectionRepository
	Participations ports.ParticipationRepository
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

// FinalizeResults ranks an election's participations and marks winners,
// returning the number of rows updated. It refuses elections whose stored
// status is not finished, so ranks can never lock in on a still-open
// election.
func (uc FinalizeUseCase) FinalizeResults(ctx context.Context, electionID string) (int, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID = strings.TrimSpace(electionID)
	logger.Info("results finalization started",
		"event", "election_finalize_started",
		"module", "election-operations/voting-engine",
		"layer", "application",
		"election_id", electionID,
	)
	if electionID == "" {
		return 0, domainerrors.ErrInvalidVoteInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return 0, err
	}
	if election.Status != entities.ElectionStatusFinished {
		logger.Warn("finalization refused on open election",
			"event", "election_finalize_not_finished",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"election_id", electionID,
			"status", string(election.Status),
		)
		return 0, domainerrors.ErrElectionNotFinished
	}

	participations, err := uc.Participations.ListParticipations(ctx, electionID)
	if err != nil {
		return 0, err
	}
	if len(participations) == 0 {
		return 0, nil
	}

	results := RankParticipations(participations)
	now := uc.now()
	updated, err := uc.Participations.SaveResults(ctx, electionID, results, now)
	if err != nil {
		return 0, err
	}

	uc.appendFinalizedEvent(ctx, election, results, now)
	logger.Info("results finalized",
		"event", "election_finalized",
		"module", "election-operations/voting-engine",
		"layer", "application",
		"election_id", electionID,
		"candidates_updated", updated,
	)
	return updated, nil
}

// RankParticipations orders rows by vote count descending with ascending
// candidate id as tie-break, assigns sequential ranks 1..N, and flags every
// row tied at the maximum count as a winner when that maximum is positive.
func RankParticipations(participations []entities.CandidateParticipation) []ports.ParticipationResult {
	ordered := append([]entities.CandidateParticipation(nil), participations...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].VoteCount == ordered[j].VoteCount {
			return ordered[i].CandidateID < ordered[j].CandidateID
		}
		return ordered[i].VoteCount > ordered[j].VoteCount
	})

	var maxVotes int64
	if len(ordered) > 0 {
		maxVotes = ordered[0].VoteCount
	}

	results := make([]ports.ParticipationResult, 0, len(ordered))
	for i, participation := range ordered {
		results = append(results, ports.ParticipationResult{
			CandidateID: participation.CandidateID,
			Rank:        i + 1,
			HasWon:      maxVotes > 0 && participation.VoteCount == maxVotes,
		})
	}
	return results
}

func (uc FinalizeUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc FinalizeUseCase) appendFinalizedEvent(
	ctx context.Context,
	election entities.Election,
	results []ports.ParticipationResult,
	occurredAt time.Time,
) {
	if uc.Outbox == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("finalized event id generation failed",
			"event", "election_finalized_event_id_failed",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"election_id", election.ElectionID,
			"error", err.Error(),
		)
		return
	}
	winners := make([]string, 0, len(results))
	for _, result := range results {
		if result.HasWon {
			winners = append(winners, result.CandidateID)
		}
	}
	envelope, err := newElectionEnvelope(eventID, "election.results_finalized", election.ElectionID, occurredAt, map[string]any{
		"election_id":      election.ElectionID,
		"total_vote_count": election.TotalVoteCount,
		"winners":          winners,
		"candidate_count":  len(results),
	})
	if err == nil {
		err = uc.Outbox.AppendOutbox(ctx, envelope)
	}
	if err != nil {
		logger.Warn("finalized event append failed",
			"event", "election_finalized_event_append_failed",
			"module", "election-operations/voting-engine",
			"layer", "application",
			"election_id", election.ElectionID,
			"error", err.Error(),
		)
	}
}
