package queries

import (
	"context"
	"sort"
	"strings"

	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	"elect/contexts/election-operations/voting-engine/ports"
)

// ResultsUseCase serves read-side election views. The results summary is
// derived from the authoritative counters on every call, never stored, so it
// can be recomputed freely and never disagrees with the tallies it reports.
type ResultsUseCase struct {
	Elections      ports.ElectionRepository
	Participations ports.ParticipationRepository
	Voters         ports.VoterRepository
}

// GetElection returns the lifecycle record for display callers.
func (uc ResultsUseCase) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
}

// GetResults builds the result summary for a finished election: turnout,
// winners, and per-candidate tallies with vote percentages. Stored rank and
// winner flags are echoed when finalization has run; otherwise both are
// derived from the counters using the same ordering the finalizer applies.
func (uc ResultsUseCase) GetResults(ctx context.Context, electionID string) (entities.ElectionResults, error) {
	electionID = strings.TrimSpace(electionID)
	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.ElectionResults{}, err
	}
	if election.Status != entities.ElectionStatusFinished {
		return entities.ElectionResults{}, domainerrors.ErrElectionNotFinished
	}

	participations, err := uc.Participations.ListParticipations(ctx, electionID)
	if err != nil {
		return entities.ElectionResults{}, err
	}
	eligible, err := uc.Voters.CountVerifiedVoters(ctx, electionID)
	if err != nil {
		return entities.ElectionResults{}, err
	}

	sort.Slice(participations, func(i, j int) bool {
		if participations[i].VoteCount == participations[j].VoteCount {
			return participations[i].CandidateID < participations[j].CandidateID
		}
		return participations[i].VoteCount > participations[j].VoteCount
	})

	var maxVotes int64
	if len(participations) > 0 {
		maxVotes = participations[0].VoteCount
	}

	totalVotes := election.TotalVoteCount
	results := entities.ElectionResults{
		ElectionID:     electionID,
		Status:         election.Status,
		TotalVotes:     totalVotes,
		EligibleVoters: eligible,
		TurnoutPercent: percentage(totalVotes, eligible),
		Winners:        make([]string, 0, 1),
		Candidates:     make([]entities.CandidateResult, 0, len(participations)),
	}

	for i, participation := range participations {
		rank := i + 1
		if participation.Rank != nil {
			rank = *participation.Rank
		}
		won := maxVotes > 0 && participation.VoteCount == maxVotes
		if participation.HasWon != nil {
			won = *participation.HasWon
		}
		if won {
			results.Winners = append(results.Winners, participation.CandidateID)
		}
		results.Candidates = append(results.Candidates, entities.CandidateResult{
			CandidateID: participation.CandidateID,
			VoteCount:   participation.VoteCount,
			Rank:        rank,
			HasWon:      won,
			VotePercent: percentage(participation.VoteCount, totalVotes),
		})
	}
	return results, nil
}

func percentage(part int64, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
