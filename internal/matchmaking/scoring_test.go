package matchmaking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkotelnikov/coffeematch-backend/internal/matchmaking"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

func newUser(id int64, city string, age int, interests, goals []string) *profile.User {
	u := &profile.User{UserID: id, Interests: interests, Goals: goals}
	if city != "" {
		u.City = &city
	}
	if age > 0 {
		u.Age = &age
	}
	return u
}

func TestScoreWorkedExample(t *testing.T) {
	// A and B share one interest, live in the same city with differing
	// case, and are 3 years apart: 10 + 30 + 15 + 20 = 75.
	a := newUser(1, "Moscow", 25, []string{"ai", "chess"}, nil)
	b := newUser(2, "moscow", 28, []string{"chess", "travel"}, nil)

	score, shared := matchmaking.Score(a, b)

	assert.Equal(t, 75, score)
	assert.Equal(t, []string{"chess"}, shared)
}

func TestScoreSymmetry(t *testing.T) {
	a := newUser(1, "Berlin", 31, []string{"running", "coffee"}, []string{"networking"})
	b := newUser(2, "berlin ", 40, []string{"Coffee", "books"}, []string{"networking", "mentoring"})

	scoreAB, sharedAB := matchmaking.Score(a, b)
	scoreBA, sharedBA := matchmaking.Score(b, a)

	assert.Equal(t, scoreAB, scoreBA)
	assert.Equal(t, sharedAB, sharedBA)
}

func TestScoreEmptyFieldsContributeNothing(t *testing.T) {
	a := &profile.User{UserID: 1}
	b := &profile.User{UserID: 2}

	score, shared := matchmaking.Score(a, b)

	assert.Equal(t, 10, score, "only the base credit applies")
	assert.Empty(t, shared)
}

func TestScoreCityComparison(t *testing.T) {
	tests := []struct {
		name  string
		cityA string
		cityB string
		bonus bool
	}{
		{"exact match", "Moscow", "Moscow", true},
		{"case insensitive", "MOSCOW", "moscow", true},
		{"surrounding whitespace", " Moscow ", "Moscow", true},
		{"different cities", "Moscow", "Kazan", false},
		{"one side missing", "Moscow", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newUser(1, tt.cityA, 0, nil, nil)
			b := newUser(2, tt.cityB, 0, nil, nil)

			score, _ := matchmaking.Score(a, b)

			want := 10
			if tt.bonus {
				want += 30
			}
			assert.Equal(t, want, score)
		})
	}
}

func TestScoreAgeProximity(t *testing.T) {
	tests := []struct {
		name  string
		ageA  int
		ageB  int
		bonus int
	}{
		{"same age", 30, 30, 20},
		{"five apart", 30, 35, 20},
		{"six apart", 30, 36, 10},
		{"ten apart", 30, 40, 10},
		{"eleven apart", 30, 41, 0},
		{"missing age", 30, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newUser(1, "", tt.ageA, nil, nil)
			b := newUser(2, "", tt.ageB, nil, nil)

			score, _ := matchmaking.Score(a, b)

			assert.Equal(t, 10+tt.bonus, score)
		})
	}
}

func TestScoreSharedListsCollapseDuplicates(t *testing.T) {
	a := newUser(1, "", 0, []string{"Chess", "chess", " CHESS "}, []string{"friends", "Friends"})
	b := newUser(2, "", 0, []string{"chess"}, []string{"friends"})

	score, shared := matchmaking.Score(a, b)

	// One shared interest and one shared goal despite the duplicates
	assert.Equal(t, 10+15+10, score)
	assert.Equal(t, []string{"chess"}, shared)
}

func TestScoreSharedCoversInterestsOnly(t *testing.T) {
	a := newUser(1, "", 0, nil, []string{"networking"})
	b := newUser(2, "", 0, nil, []string{"networking"})

	score, shared := matchmaking.Score(a, b)

	assert.Equal(t, 10+10, score)
	assert.Empty(t, shared, "goals score but never show up in the shared list")
}
