package errors

import "errors"

var (
	ErrInvalidVoteInput          = errors.New("invalid vote input")
	ErrElectionNotFound          = errors.New("election not found")
	ErrElectionNotRunning        = errors.New("election is not running")
	ErrElectionNotFinished       = errors.New("election is not finished")
	ErrVoterNotEligible          = errors.New("voter is not eligible for this election")
	ErrAlreadyVoted              = errors.New("voter has already voted in this election")
	ErrInvalidBallotSize         = errors.New("ballot size does not match votes per voter")
	ErrCandidateNotParticipating = errors.New("candidate is not participating in this election")
	ErrBallotNotFound            = errors.New("ballot not found")
	ErrConflict                  = errors.New("conflicting concurrent update")
	ErrStoreUnavailable          = errors.New("backing store unavailable")
)
