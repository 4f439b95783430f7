package matchmaking

import (
	"context"
	"errors"
	"log"

	"github.com/mkotelnikov/coffeematch-backend/internal/notify"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

var (
	ErrNotParticipant = errors.New("user is not part of this match")
	ErrMatchClosed    = errors.New("match is already closed")
	ErrChatNotCreated = errors.New("both sides must accept before an outcome can be recorded")
)

type Service interface {
	RunRound(ctx context.Context, mode Mode) (int, error)
	PendingMatches(ctx context.Context, userID int64) ([]*Match, error)
	Accept(ctx context.Context, matchID, userID int64) (*Match, error)
	Reject(ctx context.Context, matchID, userID int64) (*Match, error)
	RecordOutcome(ctx context.Context, matchID, userID int64, succeeded bool) (*Match, error)
}

type service struct {
	repo       Repository
	profiles   profile.Repository
	dispatcher notify.Dispatcher
	engine     *Engine
}

func NewService(repo Repository, profiles profile.Repository, dispatcher notify.Dispatcher, engine *Engine) Service {
	return &service{
		repo:       repo,
		profiles:   profiles,
		dispatcher: dispatcher,
		engine:     engine,
	}
}

func (s *service) RunRound(ctx context.Context, mode Mode) (int, error) {
	return s.engine.RunRound(ctx, mode)
}

func (s *service) PendingMatches(ctx context.Context, userID int64) ([]*Match, error) {
	// Polling for proposals counts as activity
	if err := s.profiles.TouchLastActive(ctx, userID); err != nil {
		log.Printf("failed to touch last_active for user %d: %v", userID, err)
	}

	return s.repo.GetPendingMatches(ctx, userID)
}
