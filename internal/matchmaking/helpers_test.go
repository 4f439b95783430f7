package matchmaking_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkotelnikov/coffeematch-backend/internal/config"
	"github.com/mkotelnikov/coffeematch-backend/internal/matchmaking"
	"github.com/mkotelnikov/coffeematch-backend/internal/notify"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

func testConfig() *config.Config {
	return &config.Config{
		ForcedScoreMin: 10,
		ForcedScoreMax: 30,
		MinAge:         14,
		MaxAge:         100,
		MaxInterests:   20,
	}
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// fakeMatchRepo is an in-memory matchmaking.Repository. It enforces the
// same open-pair uniqueness rule as the real store and can simulate
// write failures for selected pairs.
type fakeMatchRepo struct {
	mu          sync.Mutex
	matches     map[int64]*matchmaking.Match
	nextID      int64
	actions     []matchmaking.Action
	rounds      []*matchmaking.Round
	failCreates map[[2]int64]bool
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		matches:     make(map[int64]*matchmaking.Match),
		failCreates: make(map[[2]int64]bool),
	}
}

func (r *fakeMatchRepo) failCreateFor(a, b int64) {
	r.failCreates[pairKey(a, b)] = true
}

func (r *fakeMatchRepo) CreateMatch(ctx context.Context, match *matchmaking.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if match.User1ID > match.User2ID {
		match.User1ID, match.User2ID = match.User2ID, match.User1ID
	}

	if r.failCreates[pairKey(match.User1ID, match.User2ID)] {
		return errors.New("simulated write failure")
	}

	for _, existing := range r.matches {
		if existing.User1ID == match.User1ID && existing.User2ID == match.User2ID &&
			existing.Status != matchmaking.StatusRejected {
			return matchmaking.ErrMatchExists
		}
	}

	r.nextID++
	match.ID = r.nextID
	if match.Status == "" {
		match.Status = matchmaking.StatusPending
	}
	match.CreatedAt = time.Now()

	stored := *match
	r.matches[match.ID] = &stored
	return nil
}

func (r *fakeMatchRepo) GetMatch(ctx context.Context, id int64) (*matchmaking.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[id]
	if !ok {
		return nil, matchmaking.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) GetPendingMatches(ctx context.Context, userID int64) ([]*matchmaking.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*matchmaking.Match
	for _, match := range r.matches {
		if match.Involves(userID) && match.Status == matchmaking.StatusPending {
			copied := *match
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) HasAnyPriorMatch(ctx context.Context, user1ID, user2ID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(user1ID, user2ID)
	for _, match := range r.matches {
		if pairKey(match.User1ID, match.User2ID) == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) SetStatus(ctx context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[id]
	if !ok {
		return matchmaking.ErrMatchNotFound
	}
	match.Status = status
	if status == matchmaking.StatusAccepted {
		now := time.Now()
		match.AcceptedAt = &now
	}
	return nil
}

func (r *fakeMatchRepo) SetSideAcceptance(ctx context.Context, id, userID int64, accepted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[id]
	if !ok || !match.Involves(userID) {
		return matchmaking.ErrMatchNotFound
	}
	if match.User1ID == userID {
		match.User1Accepted = accepted
	} else {
		match.User2Accepted = accepted
	}
	return nil
}

func (r *fakeMatchRepo) SetOutcome(ctx context.Context, id int64, succeeded bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[id]
	if !ok {
		return matchmaking.ErrMatchNotFound
	}
	match.Succeeded = &succeeded
	now := time.Now()
	match.DecidedAt = &now
	return nil
}

func (r *fakeMatchRepo) LogAction(ctx context.Context, userID int64, kind string, targetUserID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = append(r.actions, matchmaking.Action{
		UserID:       userID,
		ActionType:   kind,
		TargetUserID: targetUserID,
	})
	return nil
}

func (r *fakeMatchRepo) DeleteAllMatches(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.matches))
	r.matches = make(map[int64]*matchmaking.Match)
	return deleted, nil
}

func (r *fakeMatchRepo) DeleteAllActions(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = nil
	return nil
}

func (r *fakeMatchRepo) CreateRound(ctx context.Context, round *matchmaking.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	round.ID = int64(len(r.rounds) + 1)
	round.CreatedAt = time.Now()
	r.rounds = append(r.rounds, round)
	return nil
}

func (r *fakeMatchRepo) CompleteRound(ctx context.Context, roundID int64, matchesCreated int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, round := range r.rounds {
		if round.ID == roundID {
			round.MatchesCreated = matchesCreated
			round.Completed = true
			return nil
		}
	}
	return matchmaking.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListMatches(ctx context.Context) ([]*matchmaking.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*matchmaking.Match, 0, len(r.matches))
	for _, match := range r.matches {
		copied := *match
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) allMatches() []*matchmaking.Match {
	matches, _ := r.ListMatches(context.Background())
	return matches
}

// fakeProfileRepo is an in-memory profile.Repository covering what the
// engine and lifecycle need; eligible means active with a completed
// profile, same as the real query.
type fakeProfileRepo struct {
	mu     sync.Mutex
	users  []*profile.User
	bumped map[int64]int
}

func newFakeProfileRepo(users ...*profile.User) *fakeProfileRepo {
	for _, u := range users {
		u.IsActive = true
		u.ProfileCompleted = true
		contact := fmt.Sprintf("user%d@test.local", u.UserID)
		u.ContactLink = &contact
	}
	return &fakeProfileRepo{users: users, bumped: make(map[int64]int)}
}

func (r *fakeProfileRepo) UpsertUser(ctx context.Context, userID int64, username string) error {
	return nil
}

func (r *fakeProfileRepo) UpdateProfile(ctx context.Context, userID int64, patch *profile.ProfilePatch) error {
	return nil
}

func (r *fakeProfileRepo) GetUser(ctx context.Context, userID int64) (*profile.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return nil, profile.ErrUserNotFound
}

func (r *fakeProfileRepo) ListEligibleUsers(ctx context.Context) ([]*profile.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*profile.User
	for _, u := range r.users {
		if u.IsActive && u.ProfileCompleted {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) ListActiveUsers(ctx context.Context) ([]*profile.User, error) {
	return r.ListEligibleUsers(ctx)
}

func (r *fakeProfileRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	return nil
}

func (r *fakeProfileRepo) TouchLastActive(ctx context.Context, userID int64) error {
	return nil
}

func (r *fakeProfileRepo) IncrementMatchesCount(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bumped[userID]++
	return nil
}

func (r *fakeProfileRepo) ListQuestions(ctx context.Context) ([]*profile.Question, error) {
	return nil, nil
}

func (r *fakeProfileRepo) Stats(ctx context.Context) (*profile.Stats, error) {
	return &profile.Stats{}, nil
}

func (r *fakeProfileRepo) ListAllUsers(ctx context.Context) ([]*profile.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*profile.User(nil), r.users...), nil
}

// fakeDispatcher records deliveries instead of sending anything.
type fakeDispatcher struct {
	mu        sync.Mutex
	proposals []int64
	mutual    []int64
	closed    []int64
	failAll   bool
}

func (d *fakeDispatcher) Propose(ctx context.Context, recipient, partner *profile.User, matchID int64, score int, shared []string, forced bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failAll {
		return errors.New("simulated delivery failure")
	}
	d.proposals = append(d.proposals, recipient.UserID)
	return nil
}

func (d *fakeDispatcher) NotifyMutual(ctx context.Context, recipient, partner *profile.User, matchID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.mutual = append(d.mutual, recipient.UserID)
	return nil
}

func (d *fakeDispatcher) NotifyClosed(ctx context.Context, recipient *profile.User, matchID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = append(d.closed, recipient.UserID)
	return nil
}

func (d *fakeDispatcher) Broadcast(ctx context.Context, recipients []*profile.User, text string) (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(recipients), 0
}

var _ notify.Dispatcher = (*fakeDispatcher)(nil)
var _ matchmaking.Repository = (*fakeMatchRepo)(nil)
var _ profile.Repository = (*fakeProfileRepo)(nil)
