package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkotelnikov/coffeematch-backend/internal/config"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

// stubRepo records the last patch so tests can inspect what the service
// actually asked the store to persist.
type stubRepo struct {
	profile.Repository

	users     map[int64]*profile.User
	lastPatch *profile.ProfilePatch
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[int64]*profile.User)}
}

func (r *stubRepo) UpsertUser(ctx context.Context, userID int64, username string) error {
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = &profile.User{UserID: userID}
	}
	if username != "" {
		r.users[userID].Username = &username
	}
	return nil
}

func (r *stubRepo) GetUser(ctx context.Context, userID int64) (*profile.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, profile.ErrUserNotFound
	}
	return user, nil
}

func (r *stubRepo) UpdateProfile(ctx context.Context, userID int64, patch *profile.ProfilePatch) error {
	if _, ok := r.users[userID]; !ok {
		return profile.ErrUserNotFound
	}
	r.lastPatch = patch
	return nil
}

func testService(repo profile.Repository) profile.Service {
	cfg := &config.Config{MinAge: 14, MaxAge: 100, MaxInterests: 3}
	return profile.NewService(repo, cfg)
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo)

	user, err := svc.Register(context.Background(), &profile.RegisterRequest{UserID: 7, Username: "pavel"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.UserID)
	require.NotNil(t, user.Username)
	assert.Equal(t, "pavel", *user.Username)
}

func TestRegisterRejectsMissingID(t *testing.T) {
	svc := testService(newStubRepo())

	_, err := svc.Register(context.Background(), &profile.RegisterRequest{})

	assert.Error(t, err)
}

func TestUpdateProfileParsesLists(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo)
	require.NoError(t, repo.UpsertUser(context.Background(), 7, "pavel"))

	interests := "Chess, chess , travel"
	goals := "networking"
	_, err := svc.UpdateProfile(context.Background(), 7, &profile.UpdateProfileRequest{
		Interests: &interests,
		Goals:     &goals,
	})

	require.NoError(t, err)
	require.NotNil(t, repo.lastPatch)
	assert.Equal(t, []string{"Chess", "travel"}, repo.lastPatch.Interests)
	assert.Equal(t, []string{"networking"}, repo.lastPatch.Goals)
}

func TestUpdateProfileAgeRange(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo)
	require.NoError(t, repo.UpsertUser(context.Background(), 7, "pavel"))

	tooYoung := 12
	_, err := svc.UpdateProfile(context.Background(), 7, &profile.UpdateProfileRequest{Age: &tooYoung})
	assert.Error(t, err)

	fine := 30
	_, err = svc.UpdateProfile(context.Background(), 7, &profile.UpdateProfileRequest{Age: &fine})
	assert.NoError(t, err)
}

func TestUpdateProfileInterestsCap(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo)
	require.NoError(t, repo.UpsertUser(context.Background(), 7, "pavel"))

	tooMany := "a,b,c,d"
	_, err := svc.UpdateProfile(context.Background(), 7, &profile.UpdateProfileRequest{Interests: &tooMany})

	assert.Error(t, err)
}

func TestUpdateProfileRejectsEmptyPatch(t *testing.T) {
	// An all-nil submission must not flip profile_completed
	repo := newStubRepo()
	svc := testService(repo)
	require.NoError(t, repo.UpsertUser(context.Background(), 7, "pavel"))

	_, err := svc.UpdateProfile(context.Background(), 7, &profile.UpdateProfileRequest{})

	assert.Error(t, err)
	assert.Nil(t, repo.lastPatch, "nothing reached the store")
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := testService(newStubRepo())

	city := "Moscow"
	_, err := svc.UpdateProfile(context.Background(), 404, &profile.UpdateProfileRequest{City: &city})

	assert.ErrorIs(t, err, profile.ErrUserNotFound)
}
