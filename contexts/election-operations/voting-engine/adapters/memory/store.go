package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	"elect/contexts/election-operations/voting-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type voterKey struct {
	electionID string
	voterID    string
}

// Store is the in-memory implementation of every engine port, used by tests
// and local wiring. CommitBallot holds the write lock across the existence
// check and the insert, which is the lock-equivalent of the database's
// uniqueness constraint on (election_id, voter_id).
type Store struct {
	mu sync.RWMutex

	elections      map[string]entities.Election
	participations map[string]map[string]entities.CandidateParticipation
	voters         map[voterKey]entities.Voter
	ballots        map[voterKey]entities.Ballot
	outbox         map[string]outboxRecord
}

func NewStore(seed []entities.Election) *Store {
	elections := make(map[string]entities.Election, len(seed))
	for _, election := range seed {
		elections[election.ElectionID] = election
	}
	return &Store{
		elections:      elections,
		participations: make(map[string]map[string]entities.CandidateParticipation),
		voters:         make(map[voterKey]entities.Voter),
		ballots:        make(map[voterKey]entities.Ballot),
		outbox:         make(map[string]outboxRecord),
	}
}

func (s *Store) SetElection(election entities.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetVoter(voter entities.Voter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voterKey{
		electionID: strings.TrimSpace(voter.ElectionID),
		voterID:    strings.TrimSpace(voter.VoterID),
	}
	s.voters[key] = voter
}

func (s *Store) SetParticipation(participation entities.CandidateParticipation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	electionID := strings.TrimSpace(participation.ElectionID)
	rows, ok := s.participations[electionID]
	if !ok {
		rows = make(map[string]entities.CandidateParticipation)
		s.participations[electionID] = rows
	}
	rows[strings.TrimSpace(participation.CandidateID)] = participation
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ListElectionsByStatus(_ context.Context, statuses []entities.ElectionStatus) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[entities.ElectionStatus]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if _, ok := wanted[election.Status]; ok {
			items = append(items, election)
		}
	}
	sortElectionsByCreation(items)
	return items, nil
}

func (s *Store) ListElections(_ context.Context) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0, len(s.elections))
	for _, election := range s.elections {
		items = append(items, election)
	}
	sortElectionsByCreation(items)
	return items, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	electionID string,
	from, to entities.ElectionStatus,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(electionID)
	election, ok := s.elections[key]
	if !ok {
		return false, domainerrors.ErrElectionNotFound
	}
	if election.Status != from {
		return false, nil
	}
	election.Status = to
	election.UpdatedAt = updatedAt.UTC()
	s.elections[key] = election
	return true, nil
}

func (s *Store) ForceStatus(
	_ context.Context,
	electionID string,
	to entities.ElectionStatus,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(electionID)
	election, ok := s.elections[key]
	if !ok {
		return false, domainerrors.ErrElectionNotFound
	}
	if election.Status == to {
		return false, nil
	}
	election.Status = to
	election.UpdatedAt = updatedAt.UTC()
	s.elections[key] = election
	return true, nil
}

func (s *Store) GetVoter(_ context.Context, electionID string, voterID string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := voterKey{
		electionID: strings.TrimSpace(electionID),
		voterID:    strings.TrimSpace(voterID),
	}
	voter, ok := s.voters[key]
	if !ok {
		return entities.Voter{}, false, nil
	}
	return voter, true, nil
}

func (s *Store) CountVerifiedVoters(_ context.Context, electionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	electionID = strings.TrimSpace(electionID)
	var count int64
	for key, voter := range s.voters {
		if key.electionID == electionID && voter.Verified {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListParticipations(_ context.Context, electionID string) ([]entities.CandidateParticipation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.participations[strings.TrimSpace(electionID)]
	items := make([]entities.CandidateParticipation, 0, len(rows))
	for _, participation := range rows {
		items = append(items, participation)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CandidateID < items[j].CandidateID
	})
	return items, nil
}

func (s *Store) SaveResults(
	_ context.Context,
	electionID string,
	results []ports.ParticipationResult,
	updatedAt time.Time,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.participations[strings.TrimSpace(electionID)]
	if !ok {
		return 0, nil
	}
	updated := 0
	for _, result := range results {
		participation, ok := rows[result.CandidateID]
		if !ok {
			continue
		}
		rank := result.Rank
		hasWon := result.HasWon
		participation.Rank = &rank
		participation.HasWon = &hasWon
		participation.UpdatedAt = updatedAt.UTC()
		rows[result.CandidateID] = participation
		updated++
	}
	return updated, nil
}

func (s *Store) CommitBallot(_ context.Context, ballot entities.Ballot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	electionID := strings.TrimSpace(ballot.ElectionID)
	key := voterKey{
		electionID: electionID,
		voterID:    strings.TrimSpace(ballot.VoterID),
	}
	if _, exists := s.ballots[key]; exists {
		return 0, domainerrors.ErrAlreadyVoted
	}
	election, ok := s.elections[electionID]
	if !ok {
		return 0, domainerrors.ErrElectionNotFound
	}

	// Validate every increment target before mutating anything so a failed
	// commit leaves no partial effects.
	rows := s.participations[electionID]
	for _, candidateID := range ballot.CandidateIDs {
		if _, ok := rows[strings.TrimSpace(candidateID)]; !ok {
			return 0, domainerrors.ErrCandidateNotParticipating
		}
	}

	for _, candidateID := range ballot.CandidateIDs {
		participation := rows[strings.TrimSpace(candidateID)]
		participation.VoteCount++
		participation.UpdatedAt = ballot.CreatedAt.UTC()
		rows[strings.TrimSpace(candidateID)] = participation
	}
	election.TotalVoteCount++
	election.UpdatedAt = ballot.CreatedAt.UTC()
	s.elections[electionID] = election
	s.ballots[key] = ballot
	return election.TotalVoteCount, nil
}

func (s *Store) GetBallotByVoter(_ context.Context, electionID string, voterID string) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := voterKey{
		electionID: strings.TrimSpace(electionID),
		voterID:    strings.TrimSpace(voterID),
	}
	ballot, ok := s.ballots[key]
	if !ok {
		return entities.Ballot{}, false, nil
	}
	return ballot, true, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, ok := s.outbox[outboxID]; ok {
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortElectionsByCreation(items []entities.Election) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ElectionID < items[j].ElectionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

var _ ports.ElectionRepository = (*Store)(nil)
var _ ports.VoterRepository = (*Store)(nil)
var _ ports.ParticipationRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
