package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	votingengine "elect/contexts/election-operations/voting-engine"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
)

func finishedElection(id string, totalVotes int64) entities.Election {
	now := time.Now().UTC()
	return entities.Election{
		ElectionID:     id,
		Title:          "Closed Election " + id,
		StartsAt:       now.Add(-3 * time.Hour),
		EndsAt:         now.Add(-time.Hour),
		Status:         entities.ElectionStatusFinished,
		VotesPerVoter:  1,
		TotalVoteCount: totalVotes,
	}
}

func seedResultsModule(t *testing.T, election entities.Election, counts map[string]int64) votingengine.Module {
	t.Helper()
	module := votingengine.NewInMemoryModule([]entities.Election{election}, nil)
	for candidateID, count := range counts {
		module.Store.SetParticipation(entities.CandidateParticipation{
			CandidateID: candidateID,
			ElectionID:  election.ElectionID,
			VoteCount:   count,
		})
	}
	return module
}

func TestFinalizeRanksAndFlagsWinners(t *testing.T) {
	module := seedResultsModule(t, finishedElection("election-1", 10), map[string]int64{
		"candidate-a": 3,
		"candidate-b": 5,
		"candidate-c": 2,
	})

	resp, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("finalize should succeed: %v", err)
	}
	if resp.CandidatesUpdated != 3 {
		t.Fatalf("expected 3 candidates updated, got %d", resp.CandidatesUpdated)
	}

	participations, err := module.Store.ListParticipations(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	wantRanks := map[string]int{"candidate-b": 1, "candidate-a": 2, "candidate-c": 3}
	for _, participation := range participations {
		if participation.Rank == nil || participation.HasWon == nil {
			t.Fatalf("%s: rank and winner flag must be set", participation.CandidateID)
		}
		if *participation.Rank != wantRanks[participation.CandidateID] {
			t.Fatalf("%s: rank = %d, want %d", participation.CandidateID, *participation.Rank, wantRanks[participation.CandidateID])
		}
		wantWon := participation.CandidateID == "candidate-b"
		if *participation.HasWon != wantWon {
			t.Fatalf("%s: has_won = %v, want %v", participation.CandidateID, *participation.HasWon, wantWon)
		}
	}
}

func TestFinalizeTieAtMaximum(t *testing.T) {
	module := seedResultsModule(t, finishedElection("election-tie", 12), map[string]int64{
		"candidate-a": 5,
		"candidate-b": 5,
		"candidate-c": 2,
	})

	if _, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-tie"); err != nil {
		t.Fatalf("finalize should succeed: %v", err)
	}

	participations, err := module.Store.ListParticipations(context.Background(), "election-tie")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	// Tied candidates both win; the tie-break orders ranks by candidate id.
	wantRanks := map[string]int{"candidate-a": 1, "candidate-b": 2, "candidate-c": 3}
	wantWon := map[string]bool{"candidate-a": true, "candidate-b": true, "candidate-c": false}
	for _, participation := range participations {
		if *participation.Rank != wantRanks[participation.CandidateID] {
			t.Fatalf("%s: rank = %d, want %d", participation.CandidateID, *participation.Rank, wantRanks[participation.CandidateID])
		}
		if *participation.HasWon != wantWon[participation.CandidateID] {
			t.Fatalf("%s: has_won = %v, want %v", participation.CandidateID, *participation.HasWon, wantWon[participation.CandidateID])
		}
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	module := seedResultsModule(t, finishedElection("election-1", 8), map[string]int64{
		"candidate-a": 5,
		"candidate-b": 3,
	})

	first, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("first finalize should succeed: %v", err)
	}
	second, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("second finalize should succeed: %v", err)
	}
	if first.CandidatesUpdated != second.CandidatesUpdated {
		t.Fatalf("finalize must be idempotent: %d vs %d", first.CandidatesUpdated, second.CandidatesUpdated)
	}

	participations, err := module.Store.ListParticipations(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	for _, participation := range participations {
		wantRank := 2
		wantWon := false
		if participation.CandidateID == "candidate-a" {
			wantRank = 1
			wantWon = true
		}
		if *participation.Rank != wantRank || *participation.HasWon != wantWon {
			t.Fatalf("%s: rerun changed results (rank=%d won=%v)", participation.CandidateID, *participation.Rank, *participation.HasWon)
		}
	}
}

func TestFinalizeZeroVotesProducesNoWinner(t *testing.T) {
	module := seedResultsModule(t, finishedElection("election-empty", 0), map[string]int64{
		"candidate-a": 0,
		"candidate-b": 0,
	})

	if _, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-empty"); err != nil {
		t.Fatalf("finalize should succeed: %v", err)
	}

	participations, err := module.Store.ListParticipations(context.Background(), "election-empty")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	for _, participation := range participations {
		if *participation.HasWon {
			t.Fatalf("%s: no candidate can win with zero votes", participation.CandidateID)
		}
	}
}

func TestFinalizeRefusesOpenElection(t *testing.T) {
	module := seedResultsModule(t, runningElection("election-open", 1), map[string]int64{
		"candidate-a": 2,
	})

	_, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-open")
	if !errors.Is(err, domainerrors.ErrElectionNotFinished) {
		t.Fatalf("expected election not finished, got %v", err)
	}
}

func TestGetResultsSummary(t *testing.T) {
	module := seedResultsModule(t, finishedElection("election-1", 8), map[string]int64{
		"candidate-a": 5,
		"candidate-b": 3,
	})
	for i := 0; i < 16; i++ {
		module.Store.SetVoter(entities.Voter{
			VoterID:    fmt.Sprintf("voter-%d", i),
			ElectionID: "election-1",
			Verified:   true,
		})
	}
	module.Store.SetVoter(entities.Voter{
		VoterID:    "voter-unverified",
		ElectionID: "election-1",
		Verified:   false,
	})

	if _, err := module.Handler.FinalizeResultsHandler(context.Background(), "election-1"); err != nil {
		t.Fatalf("finalize should succeed: %v", err)
	}

	results, err := module.Handler.GetResultsHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get results should succeed: %v", err)
	}
	if results.TotalVotes != 8 {
		t.Fatalf("expected 8 total votes, got %d", results.TotalVotes)
	}
	if results.EligibleVoters != 16 {
		t.Fatalf("expected 16 eligible voters, got %d", results.EligibleVoters)
	}
	if results.TurnoutPercent != 50 {
		t.Fatalf("expected turnout 50%%, got %v", results.TurnoutPercent)
	}
	if len(results.Winners) != 1 || results.Winners[0] != "candidate-a" {
		t.Fatalf("expected winner candidate-a, got %v", results.Winners)
	}
	if len(results.Candidates) != 2 {
		t.Fatalf("expected 2 candidate rows, got %d", len(results.Candidates))
	}
	if results.Candidates[0].CandidateID != "candidate-a" || results.Candidates[0].Rank != 1 {
		t.Fatalf("expected candidate-a ranked first, got %+v", results.Candidates[0])
	}
	if results.Candidates[0].VotePercent != 62.5 {
		t.Fatalf("expected 62.5%% for candidate-a, got %v", results.Candidates[0].VotePercent)
	}
}

func TestGetResultsBeforeFinalizationDerivesRanks(t *testing.T) {
	module := seedResultsModule(t, finishedElection("election-1", 7), map[string]int64{
		"candidate-a": 4,
		"candidate-b": 3,
	})

	results, err := module.Handler.GetResultsHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get results should succeed: %v", err)
	}
	if results.Candidates[0].CandidateID != "candidate-a" || results.Candidates[0].Rank != 1 || !results.Candidates[0].HasWon {
		t.Fatalf("expected derived winner candidate-a, got %+v", results.Candidates[0])
	}
	if results.Candidates[1].Rank != 2 || results.Candidates[1].HasWon {
		t.Fatalf("expected candidate-b derived as runner-up, got %+v", results.Candidates[1])
	}
}

func TestGetResultsRequiresFinishedElection(t *testing.T) {
	module := seedResultsModule(t, runningElection("election-open", 1), map[string]int64{
		"candidate-a": 1,
	})

	_, err := module.Handler.GetResultsHandler(context.Background(), "election-open")
	if !errors.Is(err, domainerrors.ErrElectionNotFinished) {
		t.Fatalf("expected election not finished, got %v", err)
	}
}
