package entities

import "time"

type ElectionStatus string

const (
	ElectionStatusUpcoming ElectionStatus = "upcoming"
	ElectionStatusRunning  ElectionStatus = "running"
	ElectionStatusFinished ElectionStatus = "finished"
)

// Election is the lifecycle record the scheduler keeps aligned with the clock.
// Status is observational: StatusAt is the authoritative function of time,
// the stored Status is what read-side callers see between ticks.
type Election struct {
	ElectionID     string
	Title          string
	StartsAt       time.Time
	EndsAt         time.Time
	Status         ElectionStatus
	VotesPerVoter  int
	TotalVoteCount int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusAt computes the target status for the given instant. The voting
// window is inclusive of StartsAt and EndsAt.
func (e Election) StatusAt(now time.Time) ElectionStatus {
	now = now.UTC()
	if now.Before(e.StartsAt.UTC()) {
		return ElectionStatusUpcoming
	}
	if now.After(e.EndsAt.UTC()) {
		return ElectionStatusFinished
	}
	return ElectionStatusRunning
}

// CandidateParticipation is a candidate's enrollment in one election and
// carries that election's tally for the candidate. Rank and HasWon stay nil
// until finalization.
type CandidateParticipation struct {
	CandidateID string
	ElectionID  string
	VoteCount   int64
	HasWon      *bool
	Rank        *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Voter is the eligibility record for one (voter, election) pair. The voter
// id is an opaque hashed identifier issued by registration, which is external
// to this engine.
type Voter struct {
	VoterID    string
	ElectionID string
	Verified   bool
	CreatedAt  time.Time
}

// Ballot is the committed vote record. Its existence for a (voter, election)
// pair is the sole proof the voter has voted.
type Ballot struct {
	BallotID     string
	ElectionID   string
	VoterID      string
	CandidateIDs []string
	CreatedAt    time.Time
}

// BallotReceipt confirms a committed ballot to the caller and to the optional
// real-time broadcaster.
type BallotReceipt struct {
	BallotID       string
	ElectionID     string
	VoterID        string
	CastAt         time.Time
	TotalVoteCount int64
}

// VotingStatus answers "has this voter voted, and how many selections does a
// ballot take" for display callers.
type VotingStatus struct {
	ElectionID   string
	VoterID      string
	HasVoted     bool
	VotesAllowed int
}

// CandidateResult is one finalized (or derived) row of an election result.
type CandidateResult struct {
	CandidateID string
	VoteCount   int64
	Rank        int
	HasWon      bool
	VotePercent float64
}

// ElectionResults is the derived summary for a finished election.
type ElectionResults struct {
	ElectionID     string
	Status         ElectionStatus
	TotalVotes     int64
	EligibleVoters int64
	TurnoutPercent float64
	Winners        []string
	Candidates     []CandidateResult
}
