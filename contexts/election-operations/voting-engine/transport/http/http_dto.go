package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
}

type BallotReceiptResponse struct {
	BallotID       string    `json:"ballot_id"`
	ElectionID     string    `json:"election_id"`
	VoterID        string    `json:"voter_id"`
	CastAt         time.Time `json:"cast_at"`
	TotalVoteCount int64     `json:"total_vote_count"`
}

type VotingStatusResponse struct {
	ElectionID   string `json:"election_id"`
	VoterID      string `json:"voter_id"`
	HasVoted     bool   `json:"has_voted"`
	VotesAllowed int    `json:"votes_allowed"`
}

type ElectionResponse struct {
	ElectionID     string    `json:"election_id"`
	Title          string    `json:"title"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Status         string    `json:"status"`
	VotesPerVoter  int       `json:"votes_per_voter"`
	TotalVoteCount int64     `json:"total_vote_count"`
}

type CandidateResultItem struct {
	CandidateID string  `json:"candidate_id"`
	VoteCount   int64   `json:"vote_count"`
	Rank        int     `json:"rank"`
	HasWon      bool    `json:"has_won"`
	VotePercent float64 `json:"vote_percent"`
}

type ResultsResponse struct {
	ElectionID     string                `json:"election_id"`
	Status         string                `json:"status"`
	TotalVotes     int64                 `json:"total_votes"`
	EligibleVoters int64                 `json:"eligible_voters"`
	TurnoutPercent float64               `json:"turnout_percent"`
	Winners        []string              `json:"winners"`
	Candidates     []CandidateResultItem `json:"candidates"`
}

type FinalizeResponse struct {
	ElectionID        string `json:"election_id"`
	CandidatesUpdated int    `json:"candidates_updated"`
}

type StatusPassResponse struct {
	UpdatedCount int `json:"updated_count"`
}
