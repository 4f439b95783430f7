package matchmaking

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"

	"github.com/lib/pq"

	"github.com/mkotelnikov/coffeematch-backend/internal/config"
	"github.com/mkotelnikov/coffeematch-backend/internal/notify"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

var ErrRoundInProgress = errors.New("a pairing round is already in progress")

// Engine runs pairing rounds over the current snapshot of eligible users.
// A round is a bounded batch operation: it reads the snapshot, computes
// disjoint pairs, writes match rows and fires proposal notifications,
// then returns the created-pair count.
type Engine struct {
	repo       Repository
	profiles   profile.Repository
	dispatcher notify.Dispatcher
	locker     RoundLocker
	cfg        *config.Config

	mu sync.Mutex
}

func NewEngine(repo Repository, profiles profile.Repository, dispatcher notify.Dispatcher, locker RoundLocker, cfg *config.Config) *Engine {
	return &Engine{
		repo:       repo,
		profiles:   profiles,
		dispatcher: dispatcher,
		locker:     locker,
		cfg:        cfg,
	}
}

// RunRound executes one pairing round and returns the number of matches
// created. Concurrent invocations are rejected with ErrRoundInProgress;
// the multi-step read-compute-write sequence is not transactional, so
// only one round may run at a time.
func (e *Engine) RunRound(ctx context.Context, mode Mode) (int, error) {
	if !e.mu.TryLock() {
		return 0, ErrRoundInProgress
	}
	defer e.mu.Unlock()

	if e.locker != nil {
		acquired, err := e.locker.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		if !acquired {
			return 0, ErrRoundInProgress
		}
		defer func() {
			if err := e.locker.Release(context.Background()); err != nil {
				log.Printf("failed to release round lock: %v", err)
			}
		}()
	}

	users, err := e.profiles.ListEligibleUsers(ctx)
	if err != nil {
		return 0, err
	}

	if len(users) < 2 {
		// Nothing to pair; no round row is written for a no-op round
		log.Printf("pairing round skipped: mode=%s eligible=%d", mode, len(users))
		return 0, nil
	}

	round := &Round{Mode: string(mode)}
	if err := e.repo.CreateRound(ctx, round); err != nil {
		// The round record is advisory bookkeeping, pairing proceeds without it
		log.Printf("failed to record pairing round: %v", err)
		round = nil
	}

	recordRound(mode)

	var created int
	switch mode {
	case ModeForced:
		created = e.pairForced(ctx, users, nil)
	default:
		created = e.pairSmart(ctx, users)
	}

	if round != nil {
		if err := e.repo.CompleteRound(ctx, round.ID, created); err != nil {
			log.Printf("failed to complete round %d: %v", round.ID, err)
		}
	}

	log.Printf("pairing round finished: mode=%s eligible=%d created=%d", mode, len(users), created)
	return created, nil
}

// pairSmart pairs each unconsumed user with the highest-scoring partner
// that has never been matched with them before, in any status. Users left
// without a viable partner are handed to the forced pass so the round
// still maximizes total pairs.
func (e *Engine) pairSmart(ctx context.Context, users []*profile.User) int {
	consumed := make(map[int64]bool, len(users))
	created := 0

	var leftovers []*profile.User
	for i, user := range users {
		if consumed[user.UserID] {
			continue
		}

		bestIdx := -1
		bestScore := -1
		var bestShared []string

		for j := i + 1; j < len(users); j++ {
			candidate := users[j]
			if consumed[candidate.UserID] {
				continue
			}

			prior, err := e.repo.HasAnyPriorMatch(ctx, user.UserID, candidate.UserID)
			if err != nil {
				log.Printf("history check for pair (%d, %d) failed: %v", user.UserID, candidate.UserID, err)
				continue
			}
			if prior {
				continue
			}

			score, shared := Score(user, candidate)
			if score > bestScore {
				bestIdx = j
				bestScore = score
				bestShared = shared
			}
		}

		if bestIdx == -1 {
			leftovers = append(leftovers, user)
			continue
		}

		partner := users[bestIdx]
		consumed[user.UserID] = true
		consumed[partner.UserID] = true

		if e.createAndNotify(ctx, user, partner, bestScore, bestShared, false) {
			created++
		}
	}

	// Leftovers are force-paired ignoring history. This mirrors forced
	// mode on purpose: when scored pairing runs dry the round falls back
	// to chance pairings rather than leaving everyone unmatched.
	created += e.pairForced(ctx, leftovers, consumed)

	return created
}

// pairForced shuffles the given users and pairs them off by consecutive
// index, skipping anyone already consumed this round. History is ignored.
// An odd user out stays unmatched.
func (e *Engine) pairForced(ctx context.Context, users []*profile.User, consumed map[int64]bool) int {
	pool := make([]*profile.User, 0, len(users))
	for _, user := range users {
		if consumed != nil && consumed[user.UserID] {
			continue
		}
		pool = append(pool, user)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	created := 0
	for i := 0; i+1 < len(pool); i += 2 {
		score := e.forcedScore()
		if e.createAndNotify(ctx, pool[i], pool[i+1], score, []string{ForcedSharedPlaceholder}, true) {
			created++
		}
	}

	return created
}

func (e *Engine) forcedScore() int {
	span := e.cfg.ForcedScoreMax - e.cfg.ForcedScoreMin + 1
	if span <= 1 {
		return e.cfg.ForcedScoreMin
	}
	return e.cfg.ForcedScoreMin + rand.Intn(span)
}

// createAndNotify writes one match row and fires proposal notifications
// to both sides. Any failure is logged and the round moves on: a write
// conflict means the pair already has an open match, and notification
// delivery is fire-and-forget.
func (e *Engine) createAndNotify(ctx context.Context, a, b *profile.User, score int, shared []string, forced bool) bool {
	match := &Match{
		User1ID:         a.UserID,
		User2ID:         b.UserID,
		Score:           score,
		SharedInterests: pq.StringArray(shared),
		IsForced:        forced,
	}

	if err := e.repo.CreateMatch(ctx, match); err != nil {
		if errors.Is(err, ErrMatchExists) {
			log.Printf("pair (%d, %d) already has an open match, skipping", a.UserID, b.UserID)
		} else {
			log.Printf("failed to create match for pair (%d, %d): %v", a.UserID, b.UserID, err)
		}
		return false
	}

	recordMatchCreated(forced, score)

	if err := e.dispatcher.Propose(ctx, a, b, match.ID, score, shared, forced); err != nil {
		log.Printf("proposal notification to user %d failed: %v", a.UserID, err)
	}
	if err := e.dispatcher.Propose(ctx, b, a, match.ID, score, shared, forced); err != nil {
		log.Printf("proposal notification to user %d failed: %v", b.UserID, err)
	}

	return true
}
