// internal/profile/service.go

package profile

import (
	"context"
	"fmt"

	"github.com/mkotelnikov/coffeematch-backend/internal/common/utils"
	"github.com/mkotelnikov/coffeematch-backend/internal/config"
)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error)
	GetProfile(ctx context.Context, userID int64) (*User, error)
	SetActive(ctx context.Context, userID int64, active bool) error
	ListQuestions(ctx context.Context) ([]*Question, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo Repository
	cfg  *config.Config
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertUser(ctx, req.UserID, req.Username); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return s.repo.GetUser(ctx, req.UserID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	// An empty submission would mark the profile completed without data
	if req.IsEmpty() {
		return nil, fmt.Errorf("at least one profile field is required")
	}

	if req.Age != nil && (*req.Age < s.cfg.MinAge || *req.Age > s.cfg.MaxAge) {
		return nil, fmt.Errorf("age must be between %d and %d", s.cfg.MinAge, s.cfg.MaxAge)
	}

	patch := &ProfilePatch{
		Name:              req.Name,
		Age:               req.Age,
		City:              req.City,
		Profession:        req.Profession,
		About:             req.About,
		ContactLink:       req.ContactLink,
		ContactPreference: req.ContactPreference,
	}

	if req.Interests != nil {
		patch.Interests = ParseList(*req.Interests)
		if len(patch.Interests) > s.cfg.MaxInterests {
			return nil, fmt.Errorf("at most %d interests allowed", s.cfg.MaxInterests)
		}
	}
	if req.Goals != nil {
		patch.Goals = ParseList(*req.Goals)
	}

	if err := s.repo.UpdateProfile(ctx, userID, patch); err != nil {
		return nil, err
	}

	return s.repo.GetUser(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *service) SetActive(ctx context.Context, userID int64, active bool) error {
	return s.repo.SetActive(ctx, userID, active)
}

func (s *service) ListQuestions(ctx context.Context) ([]*Question, error) {
	return s.repo.ListQuestions(ctx)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
