package matchmaking

import (
	"context"
	"errors"
	"log"

	"github.com/lib/pq"

	"github.com/mkotelnikov/coffeematch-backend/internal/common/utils"
	"github.com/mkotelnikov/coffeematch-backend/internal/notify"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

var ErrSelfPair = errors.New("cannot pair a user with themselves")

// AdminService covers the manual-override surface: direct pairing,
// history cleanup, broadcasts and aggregate stats.
type AdminService interface {
	CreatePair(ctx context.Context, req *CreatePairRequest) (*Match, error)
	WipeHistory(ctx context.Context) (int64, error)
	Broadcast(ctx context.Context, req *BroadcastRequest) (*BroadcastResult, error)
	Stats(ctx context.Context) (*profile.Stats, error)
	PendingFor(ctx context.Context, userID int64) ([]*Match, error)
}

type adminService struct {
	repo       Repository
	profiles   profile.Repository
	dispatcher notify.Dispatcher
}

func NewAdminService(repo Repository, profiles profile.Repository, dispatcher notify.Dispatcher) AdminService {
	return &adminService{
		repo:       repo,
		profiles:   profiles,
		dispatcher: dispatcher,
	}
}

// CreatePair matches two specific users bypassing eligibility and history
// checks. The real compatibility score is still computed so the proposal
// message stays meaningful, but the match is flagged as forced since it
// did not come out of scored pairing.
func (s *adminService) CreatePair(ctx context.Context, req *CreatePairRequest) (*Match, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.User1ID == req.User2ID {
		return nil, ErrSelfPair
	}

	user1, err := s.profiles.GetUser(ctx, req.User1ID)
	if err != nil {
		return nil, err
	}
	user2, err := s.profiles.GetUser(ctx, req.User2ID)
	if err != nil {
		return nil, err
	}

	score, shared := Score(user1, user2)
	match := &Match{
		User1ID:         user1.UserID,
		User2ID:         user2.UserID,
		Score:           score,
		SharedInterests: pq.StringArray(shared),
		IsForced:        true,
	}

	if err := s.repo.CreateMatch(ctx, match); err != nil {
		return nil, err
	}

	recordMatchCreated(true, score)

	if err := s.dispatcher.Propose(ctx, user1, user2, match.ID, score, shared, true); err != nil {
		log.Printf("proposal notification to user %d failed: %v", user1.UserID, err)
	}
	if err := s.dispatcher.Propose(ctx, user2, user1, match.ID, score, shared, true); err != nil {
		log.Printf("proposal notification to user %d failed: %v", user2.UserID, err)
	}

	return match, nil
}

// WipeHistory removes every match and action record. Profiles are kept.
func (s *adminService) WipeHistory(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAllMatches(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.repo.DeleteAllActions(ctx); err != nil {
		return deleted, err
	}

	log.Printf("match history wiped: %d matches removed", deleted)
	return deleted, nil
}

func (s *adminService) Broadcast(ctx context.Context, req *BroadcastRequest) (*BroadcastResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	recipients, err := s.profiles.ListActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	sent, failed := s.dispatcher.Broadcast(ctx, recipients, req.Message)
	return &BroadcastResult{Recipients: len(recipients), Sent: sent, Failed: failed}, nil
}

func (s *adminService) Stats(ctx context.Context) (*profile.Stats, error) {
	return s.profiles.Stats(ctx)
}

// PendingFor lists another user's open proposals. Unlike the
// caller-scoped listing it does not touch the user's activity.
func (s *adminService) PendingFor(ctx context.Context, userID int64) ([]*Match, error) {
	if _, err := s.profiles.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.GetPendingMatches(ctx, userID)
}
