package httpadapter

import (
	"context"
	"log/slog"

	"elect/contexts/election-operations/voting-engine/application/commands"
	"elect/contexts/election-operations/voting-engine/application/queries"
	"elect/contexts/election-operations/voting-engine/application/workers"
	"elect/contexts/election-operations/voting-engine/domain/entities"
	httptransport "elect/contexts/election-operations/voting-engine/transport/http"
)

type Handler struct {
	Votes     commands.VoteUseCase
	Finalizer commands.FinalizeUseCase
	Results   queries.ResultsUseCase
	Scheduler workers.StatusScheduler
	Logger    *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	electionID string,
	voterID string,
	req httptransport.CastVoteRequest,
) (httptransport.BallotReceiptResponse, error) {
	receipt, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ElectionID:   electionID,
		VoterID:      voterID,
		CandidateIDs: req.CandidateIDs,
	})
	if err != nil {
		return httptransport.BallotReceiptResponse{}, err
	}
	return httptransport.BallotReceiptResponse{
		BallotID:       receipt.BallotID,
		ElectionID:     receipt.ElectionID,
		VoterID:        receipt.VoterID,
		CastAt:         receipt.CastAt,
		TotalVoteCount: receipt.TotalVoteCount,
	}, nil
}

func (h Handler) VotingStatusHandler(
	ctx context.Context,
	electionID string,
	voterID string,
) (httptransport.VotingStatusResponse, error) {
	status, err := h.Votes.VotingStatus(ctx, electionID, voterID)
	if err != nil {
		return httptransport.VotingStatusResponse{}, err
	}
	return httptransport.VotingStatusResponse{
		ElectionID:   status.ElectionID,
		VoterID:      status.VoterID,
		HasVoted:     status.HasVoted,
		VotesAllowed: status.VotesAllowed,
	}, nil
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Results.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) GetResultsHandler(ctx context.Context, electionID string) (httptransport.ResultsResponse, error) {
	results, err := h.Results.GetResults(ctx, electionID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	items := make([]httptransport.CandidateResultItem, 0, len(results.Candidates))
	for _, candidate := range results.Candidates {
		items = append(items, httptransport.CandidateResultItem{
			CandidateID: candidate.CandidateID,
			VoteCount:   candidate.VoteCount,
			Rank:        candidate.Rank,
			HasWon:      candidate.HasWon,
			VotePercent: candidate.VotePercent,
		})
	}
	return httptransport.ResultsResponse{
		ElectionID:     results.ElectionID,
		Status:         string(results.Status),
		TotalVotes:     results.TotalVotes,
		EligibleVoters: results.EligibleVoters,
		TurnoutPercent: results.TurnoutPercent,
		Winners:        results.Winners,
		Candidates:     items,
	}, nil
}

func (h Handler) FinalizeResultsHandler(ctx context.Context, electionID string) (httptransport.FinalizeResponse, error) {
	updated, err := h.Finalizer.FinalizeResults(ctx, electionID)
	if err != nil {
		return httptransport.FinalizeResponse{}, err
	}
	return httptransport.FinalizeResponse{
		ElectionID:        electionID,
		CandidatesUpdated: updated,
	}, nil
}

func (h Handler) TickStatusesHandler(ctx context.Context) (httptransport.StatusPassResponse, error) {
	updated, err := h.Scheduler.Tick(ctx)
	if err != nil {
		return httptransport.StatusPassResponse{}, err
	}
	return httptransport.StatusPassResponse{UpdatedCount: updated}, nil
}

func (h Handler) SyncAllStatusesHandler(ctx context.Context) (httptransport.StatusPassResponse, error) {
	updated, err := h.Scheduler.SyncAll(ctx)
	if err != nil {
		return httptransport.StatusPassResponse{}, err
	}
	return httptransport.StatusPassResponse{UpdatedCount: updated}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionID:     election.ElectionID,
		Title:          election.Title,
		StartsAt:       election.StartsAt,
		EndsAt:         election.EndsAt,
		Status:         string(election.Status),
		VotesPerVoter:  election.VotesPerVoter,
		TotalVoteCount: election.TotalVoteCount,
	}
}
