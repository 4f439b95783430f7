package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	UpsertUser(ctx context.Context, userID int64, username string) error
	UpdateProfile(ctx context.Context, userID int64, patch *ProfilePatch) error
	GetUser(ctx context.Context, userID int64) (*User, error)
	ListEligibleUsers(ctx context.Context) ([]*User, error)
	ListActiveUsers(ctx context.Context) ([]*User, error)
	SetActive(ctx context.Context, userID int64, active bool) error
	TouchLastActive(ctx context.Context, userID int64) error
	IncrementMatchesCount(ctx context.Context, userID int64) error
	ListQuestions(ctx context.Context) ([]*Question, error)
	Stats(ctx context.Context) (*Stats, error)
	ListAllUsers(ctx context.Context) ([]*User, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertUser(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO users (user_id, username)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (user_id) DO UPDATE SET
			username = COALESCE(NULLIF($2, ''), users.username),
			last_active = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, userID, username)
	return err
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, userID int64, patch *ProfilePatch) error {
	// Resubmitting the questionnaire marks the profile complete, matching
	// the onboarding flow where the last answer closes the script.
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			age = COALESCE($3, age),
			city = COALESCE($4, city),
			profession = COALESCE($5, profession),
			interests = COALESCE($6, interests),
			goals = COALESCE($7, goals),
			about = COALESCE($8, about),
			contact_link = COALESCE($9, contact_link),
			contact_preference = COALESCE($10, contact_preference),
			profile_completed = TRUE,
			last_active = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`

	var interests, goals interface{}
	if patch.Interests != nil {
		interests = pq.StringArray(patch.Interests)
	}
	if patch.Goals != nil {
		goals = pq.StringArray(patch.Goals)
	}

	result, err := r.db.ExecContext(ctx, query,
		userID, patch.Name, patch.Age, patch.City, patch.Profession,
		interests, goals, patch.About, patch.ContactLink, patch.ContactPreference,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *postgresRepository) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresRepository) ListEligibleUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	query := `
		SELECT * FROM users
		WHERE is_active = TRUE AND profile_completed = TRUE
		ORDER BY user_id
	`

	err := r.db.SelectContext(ctx, &users, query)
	return users, err
}

func (r *postgresRepository) ListActiveUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users WHERE is_active = TRUE ORDER BY user_id`)
	return users, err
}

func (r *postgresRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2, last_active = CURRENT_TIMESTAMP WHERE user_id = $1`,
		userID, active,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *postgresRepository) TouchLastActive(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_active = CURRENT_TIMESTAMP WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepository) IncrementMatchesCount(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET matches_count = matches_count + 1 WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepository) ListQuestions(ctx context.Context) ([]*Question, error) {
	var questions []*Question
	query := `SELECT * FROM questions WHERE is_active = TRUE ORDER BY question_order`

	err := r.db.SelectContext(ctx, &questions, query)
	return questions, err
}

func (r *postgresRepository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE) AS active_users,
			(SELECT COUNT(*) FROM users WHERE profile_completed = TRUE) AS completed_profiles,
			(SELECT COUNT(*) FROM matches WHERE status = 'accepted') AS successful_matches,
			(SELECT COUNT(*) FROM matches WHERE status = 'pending') AS pending_matches
	`

	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *postgresRepository) ListAllUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY user_id`)
	return users, err
}
