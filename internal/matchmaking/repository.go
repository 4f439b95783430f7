package matchmaking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchExists   = errors.New("an open match already exists for this pair")
)

type Repository interface {
	CreateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, id int64) (*Match, error)
	GetPendingMatches(ctx context.Context, userID int64) ([]*Match, error)
	HasAnyPriorMatch(ctx context.Context, user1ID, user2ID int64) (bool, error)
	SetStatus(ctx context.Context, id int64, status string) error
	SetSideAcceptance(ctx context.Context, id, userID int64, accepted bool) error
	SetOutcome(ctx context.Context, id int64, succeeded bool) error
	LogAction(ctx context.Context, userID int64, kind string, targetUserID *int64) error
	DeleteAllMatches(ctx context.Context) (int64, error)
	DeleteAllActions(ctx context.Context) error
	CreateRound(ctx context.Context, round *Round) error
	CompleteRound(ctx context.Context, roundID int64, matchesCreated int) error
	ListMatches(ctx context.Context) ([]*Match, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateMatch(ctx context.Context, match *Match) error {
	// Canonical pair ordering keeps the open-pair uniqueness index honest
	if match.User1ID > match.User2ID {
		match.User1ID, match.User2ID = match.User2ID, match.User1ID
	}

	query := `
		INSERT INTO matches (user1_id, user2_id, score, shared_interests, is_forced, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	if match.Status == "" {
		match.Status = StatusPending
	}
	if match.SharedInterests == nil {
		match.SharedInterests = pq.StringArray{}
	}

	err := r.db.QueryRowxContext(
		ctx, query,
		match.User1ID, match.User2ID, match.Score,
		match.SharedInterests, match.IsForced, match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		// Unique violation on the partial index means a non-rejected
		// match already exists for this pair: an expected outcome
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return ErrMatchExists
		}
		return err
	}

	return nil
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var match Match
	err := r.db.GetContext(ctx, &match, `SELECT * FROM matches WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	return &match, nil
}

func (r *postgresRepository) GetPendingMatches(ctx context.Context, userID int64) ([]*Match, error) {
	query := `
		SELECT m.id, m.user1_id, m.user2_id, m.score, m.shared_interests,
		       m.is_forced, m.status, m.user1_accepted, m.user2_accepted,
		       m.succeeded, m.created_at, m.accepted_at, m.decided_at,
		       u.user_id, u.username, u.name, u.age, u.city, u.profession,
		       u.interests, u.goals, u.about, u.contact_link, u.contact_preference
		FROM matches m
		JOIN users u ON u.user_id = CASE WHEN m.user1_id = $1 THEN m.user2_id ELSE m.user1_id END
		WHERE (m.user1_id = $1 OR m.user2_id = $1) AND m.status = $2
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		var m Match
		var partner profile.User

		err := rows.Scan(
			&m.ID, &m.User1ID, &m.User2ID, &m.Score, &m.SharedInterests,
			&m.IsForced, &m.Status, &m.User1Accepted, &m.User2Accepted,
			&m.Succeeded, &m.CreatedAt, &m.AcceptedAt, &m.DecidedAt,
			&partner.UserID, &partner.Username, &partner.Name, &partner.Age,
			&partner.City, &partner.Profession, &partner.Interests,
			&partner.Goals, &partner.About, &partner.ContactLink,
			&partner.ContactPreference,
		)
		if err != nil {
			return nil, err
		}

		m.Partner = &partner
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

func (r *postgresRepository) HasAnyPriorMatch(ctx context.Context, user1ID, user2ID int64) (bool, error) {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}

	// Any row counts, rejected included: a pair once proposed is never
	// re-proposed by scored pairing
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM matches WHERE user1_id = $1 AND user2_id = $2
		)
	`

	err := r.db.GetContext(ctx, &exists, query, user1ID, user2ID)
	return exists, err
}

func (r *postgresRepository) SetStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE matches
		SET status = $2,
		    accepted_at = CASE WHEN $2 = 'accepted' THEN CURRENT_TIMESTAMP ELSE accepted_at END
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *postgresRepository) SetSideAcceptance(ctx context.Context, id, userID int64, accepted bool) error {
	query := `
		UPDATE matches SET
			user1_accepted = CASE WHEN user1_id = $2 THEN $3 ELSE user1_accepted END,
			user2_accepted = CASE WHEN user2_id = $2 THEN $3 ELSE user2_accepted END
		WHERE id = $1 AND (user1_id = $2 OR user2_id = $2)
	`

	result, err := r.db.ExecContext(ctx, query, id, userID, accepted)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *postgresRepository) SetOutcome(ctx context.Context, id int64, succeeded bool) error {
	query := `
		UPDATE matches
		SET succeeded = $2, decided_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, succeeded)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *postgresRepository) LogAction(ctx context.Context, userID int64, kind string, targetUserID *int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_actions (user_id, action_type, target_user_id) VALUES ($1, $2, $3)`,
		userID, kind, targetUserID,
	)
	return err
}

func (r *postgresRepository) DeleteAllMatches(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches`)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *postgresRepository) DeleteAllActions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_actions`)
	return err
}

func (r *postgresRepository) CreateRound(ctx context.Context, round *Round) error {
	query := `
		INSERT INTO match_rounds (mode)
		VALUES ($1)
		RETURNING id, requested_for, created_at
	`

	return r.db.QueryRowxContext(ctx, query, round.Mode).
		Scan(&round.ID, &round.RequestedFor, &round.CreatedAt)
}

func (r *postgresRepository) CompleteRound(ctx context.Context, roundID int64, matchesCreated int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE match_rounds SET matches_created = $2, completed = TRUE WHERE id = $1`,
		roundID, matchesCreated,
	)
	return err
}

func (r *postgresRepository) ListMatches(ctx context.Context) ([]*Match, error) {
	var matches []*Match
	err := r.db.SelectContext(ctx, &matches, `SELECT * FROM matches ORDER BY id`)
	return matches, err
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMatchNotFound
	}
	return nil
}
