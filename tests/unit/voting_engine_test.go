package unit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	votingengine "elect/contexts/election-operations/voting-engine"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	httptransport "elect/contexts/election-operations/voting-engine/transport/http"
)

func runningElection(id string, votesPerVoter int) entities.Election {
	now := time.Now().UTC()
	return entities.Election{
		ElectionID:    id,
		Title:         "Student Council " + id,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(time.Hour),
		Status:        entities.ElectionStatusRunning,
		VotesPerVoter: votesPerVoter,
		CreatedAt:     now.Add(-24 * time.Hour),
	}
}

func seedVotingModule(t *testing.T, election entities.Election, candidateIDs []string, voterIDs []string) votingengine.Module {
	t.Helper()
	module := votingengine.NewInMemoryModule([]entities.Election{election}, nil)
	for _, candidateID := range candidateIDs {
		module.Store.SetParticipation(entities.CandidateParticipation{
			CandidateID: candidateID,
			ElectionID:  election.ElectionID,
			CreatedAt:   election.CreatedAt,
		})
	}
	for _, voterID := range voterIDs {
		module.Store.SetVoter(entities.Voter{
			VoterID:    voterID,
			ElectionID: election.ElectionID,
			Verified:   true,
			CreatedAt:  election.CreatedAt,
		})
	}
	return module
}

func TestCastVoteCommitsBallot(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-1", 1),
		[]string{"candidate-a", "candidate-b"},
		[]string{"voter-1"},
	)

	receipt, err := module.Handler.CastVoteHandler(
		context.Background(),
		"election-1",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
	)
	if err != nil {
		t.Fatalf("cast vote should succeed: %v", err)
	}
	if receipt.BallotID == "" {
		t.Fatalf("expected a ballot id")
	}
	if receipt.TotalVoteCount != 1 {
		t.Fatalf("expected total vote count 1, got %d", receipt.TotalVoteCount)
	}

	status, err := module.Handler.VotingStatusHandler(context.Background(), "election-1", "voter-1")
	if err != nil {
		t.Fatalf("voting status should succeed: %v", err)
	}
	if !status.HasVoted {
		t.Fatalf("expected voter to be recorded as voted")
	}
	if status.VotesAllowed != 1 {
		t.Fatalf("expected votes allowed 1, got %d", status.VotesAllowed)
	}

	participations, err := module.Store.ListParticipations(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	for _, participation := range participations {
		want := int64(0)
		if participation.CandidateID == "candidate-a" {
			want = 1
		}
		if participation.VoteCount != want {
			t.Fatalf("candidate %s count = %d, want %d", participation.CandidateID, participation.VoteCount, want)
		}
	}
}

func TestCastVoteRejectsSecondBallot(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-1", 1),
		[]string{"candidate-a", "candidate-b"},
		[]string{"voter-1"},
	)

	_, err := module.Handler.CastVoteHandler(
		context.Background(),
		"election-1",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
	)
	if err != nil {
		t.Fatalf("first vote should succeed: %v", err)
	}

	_, err = module.Handler.CastVoteHandler(
		context.Background(),
		"election-1",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-b"}},
	)
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted, got %v", err)
	}

	// The rejected ballot must leave no partial effects.
	election, err := module.Store.GetElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get election: %v", err)
	}
	if election.TotalVoteCount != 1 {
		t.Fatalf("expected total vote count to stay 1, got %d", election.TotalVoteCount)
	}
	participations, err := module.Store.ListParticipations(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	for _, participation := range participations {
		if participation.CandidateID == "candidate-b" && participation.VoteCount != 0 {
			t.Fatalf("rejected ballot must not increment candidate-b, got %d", participation.VoteCount)
		}
	}
}

func TestCastVoteOutsideVotingWindow(t *testing.T) {
	now := time.Now().UTC()
	upcoming := runningElection("election-upcoming", 1)
	upcoming.StartsAt = now.Add(time.Hour)
	upcoming.EndsAt = now.Add(2 * time.Hour)
	upcoming.Status = entities.ElectionStatusUpcoming

	finished := runningElection("election-finished", 1)
	finished.StartsAt = now.Add(-2 * time.Hour)
	finished.EndsAt = now.Add(-time.Hour)
	finished.Status = entities.ElectionStatusFinished

	for _, election := range []entities.Election{upcoming, finished} {
		module := seedVotingModule(t, election, []string{"candidate-a"}, []string{"voter-1"})
		_, err := module.Handler.CastVoteHandler(
			context.Background(),
			election.ElectionID,
			"voter-1",
			httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
		)
		if !errors.Is(err, domainerrors.ErrElectionNotRunning) {
			t.Fatalf("%s: expected election not running, got %v", election.ElectionID, err)
		}
	}
}

func TestCastVoteAdmissionFollowsClockNotStoredStatus(t *testing.T) {
	// Stored status lags a scheduler tick but the window is open: the vote
	// must be admitted.
	election := runningElection("election-lagging", 1)
	election.Status = entities.ElectionStatusUpcoming
	module := seedVotingModule(t, election, []string{"candidate-a"}, []string{"voter-1"})

	_, err := module.Handler.CastVoteHandler(
		context.Background(),
		"election-lagging",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
	)
	if err != nil {
		t.Fatalf("vote inside the window should succeed despite stale stored status: %v", err)
	}
}

func TestCastVoteElectionNotFound(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil, nil)
	_, err := module.Handler.CastVoteHandler(
		context.Background(),
		"missing-election",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
	)
	if !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected election not found, got %v", err)
	}
}

func TestCastVoteVoterEligibility(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-1", 1),
		[]string{"candidate-a"},
		nil,
	)
	module.Store.SetVoter(entities.Voter{
		VoterID:    "voter-unverified",
		ElectionID: "election-1",
		Verified:   false,
	})

	for _, voterID := range []string{"voter-unknown", "voter-unverified"} {
		_, err := module.Handler.CastVoteHandler(
			context.Background(),
			"election-1",
			voterID,
			httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
		)
		if !errors.Is(err, domainerrors.ErrVoterNotEligible) {
			t.Fatalf("%s: expected voter not eligible, got %v", voterID, err)
		}
	}
}

func TestCastVoteBallotSizeRules(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-1", 2),
		[]string{"candidate-a", "candidate-b", "candidate-c"},
		[]string{"voter-1"},
	)

	cases := map[string][]string{
		"empty":     {},
		"too small": {"candidate-a"},
		"too large": {"candidate-a", "candidate-b", "candidate-c"},
		"duplicate": {"candidate-a", "candidate-a"},
		"blank id":  {"candidate-a", "  "},
	}
	for name, candidateIDs := range cases {
		_, err := module.Handler.CastVoteHandler(
			context.Background(),
			"election-1",
			"voter-1",
			httptransport.CastVoteRequest{CandidateIDs: candidateIDs},
		)
		if !errors.Is(err, domainerrors.ErrInvalidBallotSize) {
			t.Fatalf("%s: expected invalid ballot size, got %v", name, err)
		}
	}

	// A well-formed two-selection ballot still goes through.
	_, err := module.Handler.CastVoteHandler(
		context.Background(),
		"election-1",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a", "candidate-c"}},
	)
	if err != nil {
		t.Fatalf("valid ballot should succeed: %v", err)
	}
}

func TestCastVoteUnknownCandidate(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-1", 1),
		[]string{"candidate-a"},
		[]string{"voter-1"},
	)

	_, err := module.Handler.CastVoteHandler(
		context.Background(),
		"election-1",
		"voter-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-x"}},
	)
	if !errors.Is(err, domainerrors.ErrCandidateNotParticipating) {
		t.Fatalf("expected candidate not participating, got %v", err)
	}
}

func TestConcurrentDuplicateVotesCommitExactlyOnce(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-1", 1),
		[]string{"candidate-a"},
		[]string{"voter-1"},
	)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = module.Handler.CastVoteHandler(
				context.Background(),
				"election-1",
				"voter-1",
				httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
			)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrAlreadyVoted):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one committed ballot, got %d", succeeded)
	}

	election, err := module.Store.GetElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get election: %v", err)
	}
	if election.TotalVoteCount != 1 {
		t.Fatalf("expected total vote count 1, got %d", election.TotalVoteCount)
	}
}

func TestConcurrentDistinctVotersAllCommit(t *testing.T) {
	const voters = 20
	voterIDs := make([]string, 0, voters)
	for i := 0; i < voters; i++ {
		voterIDs = append(voterIDs, fmt.Sprintf("voter-%d", i))
	}
	module := seedVotingModule(t,
		runningElection("election-1", 1),
		[]string{"candidate-a"},
		voterIDs,
	)

	var wg sync.WaitGroup
	errs := make([]error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = module.Handler.CastVoteHandler(
				context.Background(),
				"election-1",
				voterIDs[i],
				httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-a"}},
			)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("voter %d: unexpected error %v", i, err)
		}
	}
	election, err := module.Store.GetElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get election: %v", err)
	}
	if election.TotalVoteCount != voters {
		t.Fatalf("expected total vote count %d, got %d", voters, election.TotalVoteCount)
	}
}
