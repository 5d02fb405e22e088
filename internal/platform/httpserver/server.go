package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	votingengine "elect/contexts/election-operations/voting-engine"
	votingdomainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	votinghttp "elect/contexts/election-operations/voting-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "elect/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	voting votingengine.Module
}

func New(voting votingengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		voting: voting,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/voting-status", s.handleVotingStatus)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/results", s.handleGetResults)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/results/finalize", s.handleFinalizeResults)

	s.mux.HandleFunc("POST /v1/admin/status/tick", s.handleTickStatuses)
	s.mux.HandleFunc("POST /v1/admin/status/sync", s.handleSyncStatuses)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("election_id")
	resp, err := s.voting.Handler.GetElectionHandler(r.Context(), electionID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID := strings.TrimSpace(r.Header.Get("X-Voter-Id"))
	if voterID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Id header is required")
		return
	}

	var req votinghttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	electionID := r.PathValue("election_id")
	resp, err := s.voting.Handler.CastVoteHandler(r.Context(), electionID, voterID, req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleVotingStatus(w http.ResponseWriter, r *http.Request) {
	voterID := strings.TrimSpace(r.Header.Get("X-Voter-Id"))
	if voterID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Id header is required")
		return
	}

	electionID := r.PathValue("election_id")
	resp, err := s.voting.Handler.VotingStatusHandler(r.Context(), electionID, voterID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("election_id")
	resp, err := s.voting.Handler.GetResultsHandler(r.Context(), electionID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalizeResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("election_id")
	resp, err := s.voting.Handler.FinalizeResultsHandler(r.Context(), electionID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTickStatuses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.TickStatusesHandler(r.Context())
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSyncStatuses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.SyncAllStatusesHandler(r.Context())
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVotingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, votingdomainerrors.ErrElectionNotFound):
		writeVotingError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, votingdomainerrors.ErrBallotNotFound):
		writeVotingError(w, http.StatusNotFound, "ballot_not_found", err.Error())
	case errors.Is(err, votingdomainerrors.ErrElectionNotRunning):
		writeVotingError(w, http.StatusConflict, "election_not_running", err.Error())
	case errors.Is(err, votingdomainerrors.ErrAlreadyVoted):
		writeVotingError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, votingdomainerrors.ErrElectionNotFinished):
		writeVotingError(w, http.StatusConflict, "election_not_finished", err.Error())
	case errors.Is(err, votingdomainerrors.ErrConflict):
		writeVotingError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, votingdomainerrors.ErrVoterNotEligible):
		writeVotingError(w, http.StatusForbidden, "voter_not_eligible", err.Error())
	case errors.Is(err, votingdomainerrors.ErrInvalidBallotSize):
		writeVotingError(w, http.StatusUnprocessableEntity, "invalid_ballot_size", err.Error())
	case errors.Is(err, votingdomainerrors.ErrCandidateNotParticipating):
		writeVotingError(w, http.StatusUnprocessableEntity, "candidate_not_participating", err.Error())
	case errors.Is(err, votingdomainerrors.ErrInvalidVoteInput):
		writeVotingError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	default:
		writeVotingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVotingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
