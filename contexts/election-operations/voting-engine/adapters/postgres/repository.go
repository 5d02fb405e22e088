package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"elect/contexts/election-operations/voting-engine/domain/entities"
	domainerrors "elect/contexts/election-operations/voting-engine/domain/errors"
	"elect/contexts/election-operations/voting-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("election_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListElectionsByStatus(
	ctx context.Context,
	statuses []entities.ElectionStatus,
) ([]entities.Election, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_by_status_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_elections_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) TransitionStatus(
	ctx context.Context,
	electionID string,
	from, to entities.ElectionStatus,
	updatedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("status = ?", string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("election_repo_transition_status_failed", result.Error,
			"election_id", strings.TrimSpace(electionID),
			"from", string(from),
			"to", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ForceStatus(
	ctx context.Context,
	electionID string,
	to entities.ElectionStatus,
	updatedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("status <> ?", string(to)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("election_repo_force_status_failed", result.Error,
			"election_id", strings.TrimSpace(electionID),
			"to", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) GetVoter(ctx context.Context, electionID string, voterID string) (entities.Voter, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, r.logError("election_repo_get_voter_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CountVerifiedVoters(ctx context.Context, electionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&voterModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("verified = ?", true).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("election_repo_count_voters_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return count, nil
}

func (r *Repository) ListParticipations(ctx context.Context, electionID string) ([]entities.CandidateParticipation, error) {
	var rows []participationModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("candidate_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_participations_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.CandidateParticipation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveResults(
	ctx context.Context,
	electionID string,
	results []ports.ParticipationResult,
	updatedAt time.Time,
) (int, error) {
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, result := range results {
			res := tx.Model(&participationModel{}).
				Where("election_id = ?", strings.TrimSpace(electionID)).
				Where("candidate_id = ?", result.CandidateID).
				Updates(map[string]any{
					"has_won":    result.HasWon,
					"rank":       result.Rank,
					"updated_at": updatedAt.UTC(),
				})
			if res.Error != nil {
				return res.Error
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, r.logError("election_repo_save_results_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return updated, nil
}

// CommitBallot is the atomic unit of the voting transaction engine: ballot
// insert, per-candidate counter increments, and the election total increment
// commit or roll back together. The unique index on (election_id, voter_id)
// is what makes concurrent same-voter ballots mutually exclusive; counter
// updates are in-database increments so concurrent ballots for different
// voters only serialize on the rows they actually touch.
func (r *Repository) CommitBallot(ctx context.Context, ballot entities.Ballot) (int64, error) {
	row, err := ballotModelFromEntity(ballot)
	if err != nil {
		return 0, err
	}

	var newTotal int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}
		for _, candidateID := range ballot.CandidateIDs {
			res := tx.Model(&participationModel{}).
				Where("election_id = ?", row.ElectionID).
				Where("candidate_id = ?", strings.TrimSpace(candidateID)).
				Updates(map[string]any{
					"vote_count": gorm.Expr("vote_count + 1"),
					"updated_at": row.CreatedAt,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domainerrors.ErrCandidateNotParticipating
			}
		}
		res := tx.Raw(
			"UPDATE elections SET total_vote_count = total_vote_count + 1, updated_at = ? WHERE id = ? RETURNING total_vote_count",
			row.CreatedAt, row.ElectionID,
		).Scan(&newTotal)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainerrors.ErrElectionNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) ||
			errors.Is(err, domainerrors.ErrCandidateNotParticipating) ||
			errors.Is(err, domainerrors.ErrElectionNotFound) {
			return 0, err
		}
		return 0, r.logError("election_repo_commit_ballot_failed", err,
			"election_id", row.ElectionID,
			"voter_id", row.VoterID,
		)
	}
	return newTotal, nil
}

func (r *Repository) GetBallotByVoter(ctx context.Context, electionID string, voterID string) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("election_repo_get_ballot_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	ballot, err := row.toEntity()
	if err != nil {
		return entities.Ballot{}, false, r.logError("election_repo_decode_ballot_failed", err,
			"ballot_id", row.ID,
		)
	}
	return ballot, true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Title          string    `gorm:"column:title"`
	StartsAt       time.Time `gorm:"column:starts_at"`
	EndsAt         time.Time `gorm:"column:ends_at"`
	Status         string    `gorm:"column:status"`
	VotesPerVoter  int       `gorm:"column:votes_per_voter"`
	TotalVoteCount int64     `gorm:"column:total_vote_count"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:     m.ID,
		Title:          m.Title,
		StartsAt:       m.StartsAt.UTC(),
		EndsAt:         m.EndsAt.UTC(),
		Status:         entities.ElectionStatus(m.Status),
		VotesPerVoter:  m.VotesPerVoter,
		TotalVoteCount: m.TotalVoteCount,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type participationModel struct {
	CandidateID string    `gorm:"column:candidate_id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id;primaryKey"`
	VoteCount   int64     `gorm:"column:vote_count"`
	HasWon      *bool     `gorm:"column:has_won"`
	Rank        *int      `gorm:"column:rank"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (participationModel) TableName() string {
	return "candidate_participations"
}

func (m participationModel) toEntity() entities.CandidateParticipation {
	return entities.CandidateParticipation{
		CandidateID: m.CandidateID,
		ElectionID:  m.ElectionID,
		VoteCount:   m.VoteCount,
		HasWon:      m.HasWon,
		Rank:        m.Rank,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type voterModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ElectionID string    `gorm:"column:election_id;primaryKey"`
	Verified   bool      `gorm:"column:verified"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (voterModel) TableName() string {
	return "voters"
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		VoterID:    m.ID,
		ElectionID: m.ElectionID,
		Verified:   m.Verified,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type ballotModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	ElectionID   string    `gorm:"column:election_id;uniqueIndex:uq_ballots_election_voter"`
	VoterID      string    `gorm:"column:voter_id;uniqueIndex:uq_ballots_election_voter"`
	CandidateIDs []byte    `gorm:"column:candidate_ids"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) (ballotModel, error) {
	selections := make([]string, 0, len(ballot.CandidateIDs))
	for _, candidateID := range ballot.CandidateIDs {
		selections = append(selections, strings.TrimSpace(candidateID))
	}
	payload, err := json.Marshal(selections)
	if err != nil {
		return ballotModel{}, err
	}
	row := ballotModel{
		ID:           strings.TrimSpace(ballot.BallotID),
		ElectionID:   strings.TrimSpace(ballot.ElectionID),
		VoterID:      strings.TrimSpace(ballot.VoterID),
		CandidateIDs: payload,
		CreatedAt:    ballot.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row, nil
}

func (m ballotModel) toEntity() (entities.Ballot, error) {
	var selections []string
	if len(m.CandidateIDs) > 0 {
		if err := json.Unmarshal(m.CandidateIDs, &selections); err != nil {
			return entities.Ballot{}, err
		}
	}
	return entities.Ballot{
		BallotID:     m.ID,
		ElectionID:   m.ElectionID,
		VoterID:      m.VoterID,
		CandidateIDs: selections,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func toElectionEntities(rows []electionModel) []entities.Election {
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.VoterRepository = (*Repository)(nil)
var _ ports.ParticipationRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
