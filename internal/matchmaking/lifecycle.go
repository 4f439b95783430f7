package matchmaking

import (
	"context"
	"log"
)

// Accept records one side's acceptance. When both sides have accepted the
// match flips to accepted and contact details are revealed to both users.
// Accepting twice is a no-op.
func (s *service) Accept(ctx context.Context, matchID, userID int64) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status == StatusRejected {
		return nil, ErrMatchClosed
	}
	if match.SideAccepted(userID) {
		return match, nil
	}

	if err := s.repo.SetSideAcceptance(ctx, matchID, userID, true); err != nil {
		return nil, err
	}

	partnerID := match.OtherSide(userID)
	s.logAction(ctx, userID, ActionAccepted, &partnerID)
	recordDecision("accepted")

	match, err = s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.ChatCreated() && match.Status != StatusAccepted {
		if err := s.repo.SetStatus(ctx, matchID, StatusAccepted); err != nil {
			return nil, err
		}
		match.Status = StatusAccepted

		s.notifyChatCreated(ctx, match)
	}

	return match, nil
}

// Reject closes the match for both sides. Rejection is terminal; the
// counterpart is not told who passed and simply stops seeing the match
// among their pending proposals.
func (s *service) Reject(ctx context.Context, matchID, userID int64) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status == StatusRejected {
		return match, nil
	}

	if err := s.repo.SetStatus(ctx, matchID, StatusRejected); err != nil {
		return nil, err
	}
	match.Status = StatusRejected

	partnerID := match.OtherSide(userID)
	s.logAction(ctx, userID, ActionRejected, &partnerID)
	recordDecision("rejected")

	if user, err := s.profiles.GetUser(ctx, userID); err == nil {
		if err := s.dispatcher.NotifyClosed(ctx, user, matchID); err != nil {
			log.Printf("rejection notification to user %d failed: %v", userID, err)
		}
	}

	return match, nil
}

// RecordOutcome stores whether the pair actually met, after both sides
// accepted. The outcome is informational: it feeds stats and the match
// counters but never blocks future pairings.
func (s *service) RecordOutcome(ctx context.Context, matchID, userID int64, succeeded bool) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, ErrNotParticipant
	}
	if !match.ChatCreated() {
		return nil, ErrChatNotCreated
	}
	if match.Succeeded != nil {
		return match, nil
	}

	if err := s.repo.SetOutcome(ctx, matchID, succeeded); err != nil {
		return nil, err
	}
	match.Succeeded = &succeeded

	partnerID := match.OtherSide(userID)
	s.logAction(ctx, userID, ActionOutcome, &partnerID)
	recordOutcome(succeeded)

	if succeeded {
		for _, id := range []int64{match.User1ID, match.User2ID} {
			if err := s.profiles.IncrementMatchesCount(ctx, id); err != nil {
				log.Printf("failed to bump matches count for user %d: %v", id, err)
			}
		}
	}

	return match, nil
}

func (s *service) notifyChatCreated(ctx context.Context, match *Match) {
	user1, err := s.profiles.GetUser(ctx, match.User1ID)
	if err != nil {
		log.Printf("failed to load user %d for mutual notification: %v", match.User1ID, err)
		return
	}
	user2, err := s.profiles.GetUser(ctx, match.User2ID)
	if err != nil {
		log.Printf("failed to load user %d for mutual notification: %v", match.User2ID, err)
		return
	}

	if err := s.dispatcher.NotifyMutual(ctx, user1, user2, match.ID); err != nil {
		log.Printf("mutual notification to user %d failed: %v", user1.UserID, err)
	}
	if err := s.dispatcher.NotifyMutual(ctx, user2, user1, match.ID); err != nil {
		log.Printf("mutual notification to user %d failed: %v", user2.UserID, err)
	}
}

func (s *service) logAction(ctx context.Context, userID int64, kind string, targetUserID *int64) {
	if err := s.repo.LogAction(ctx, userID, kind, targetUserID); err != nil {
		log.Printf("failed to log %s action for user %d: %v", kind, userID, err)
	}
}
