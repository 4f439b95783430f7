package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mkotelnikov/coffeematch-backend/internal/matchmaking"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

var ErrUnknownTable = errors.New("unknown export table")

const (
	TableUsers   = "users"
	TableMatches = "matches"
)

// Result is one generated export: the CSV payload plus where a copy
// was archived.
type Result struct {
	Table    string
	Filename string
	Rows     int
	Location string
	Data     []byte
}

type Service interface {
	Export(ctx context.Context, table string) (*Result, error)
}

type service struct {
	profiles profile.Repository
	matches  matchmaking.Repository
	storage  Storage
}

func NewService(profiles profile.Repository, matches matchmaking.Repository, storage Storage) Service {
	return &service{profiles: profiles, matches: matches, storage: storage}
}

func (s *service) Export(ctx context.Context, table string) (*Result, error) {
	var (
		rows [][]string
		err  error
	)

	switch table {
	case TableUsers:
		rows, err = s.userRows(ctx)
	case TableMatches:
		rows, err = s.matchRows(ctx)
	default:
		return nil, ErrUnknownTable
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	result := &Result{
		Table:    table,
		Filename: fmt.Sprintf("%s-%s.csv", table, time.Now().Format("20060102-150405")),
		Rows:     len(rows) - 1,
		Data:     buf.Bytes(),
	}

	location, err := s.storage.Store(ctx, result.Filename, result.Data)
	if err != nil {
		return nil, err
	}
	result.Location = location

	return result, nil
}

func (s *service) userRows(ctx context.Context) ([][]string, error) {
	users, err := s.profiles.ListAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{
		"user_id", "username", "name", "age", "city", "profession",
		"interests", "goals", "about", "contact_link", "contact_preference",
		"is_active", "profile_completed", "matches_count", "created_at", "last_active",
	}}

	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.UserID, 10),
			deref(u.Username),
			deref(u.Name),
			derefInt(u.Age),
			deref(u.City),
			deref(u.Profession),
			strings.Join(u.Interests, "; "),
			strings.Join(u.Goals, "; "),
			deref(u.About),
			deref(u.ContactLink),
			deref(u.ContactPreference),
			strconv.FormatBool(u.IsActive),
			strconv.FormatBool(u.ProfileCompleted),
			strconv.Itoa(u.MatchesCount),
			u.CreatedAt.Format(time.RFC3339),
			u.LastActive.Format(time.RFC3339),
		})
	}

	return rows, nil
}

func (s *service) matchRows(ctx context.Context) ([][]string, error) {
	matches, err := s.matches.ListMatches(ctx)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{
		"id", "user1_id", "user2_id", "score", "shared_interests",
		"is_forced", "status", "user1_accepted", "user2_accepted",
		"succeeded", "created_at", "accepted_at", "decided_at",
	}}

	for _, m := range matches {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			strconv.FormatInt(m.User1ID, 10),
			strconv.FormatInt(m.User2ID, 10),
			strconv.Itoa(m.Score),
			strings.Join(m.SharedInterests, "; "),
			strconv.FormatBool(m.IsForced),
			m.Status,
			strconv.FormatBool(m.User1Accepted),
			strconv.FormatBool(m.User2Accepted),
			derefBool(m.Succeeded),
			m.CreatedAt.Format(time.RFC3339),
			derefTime(m.AcceptedAt),
			derefTime(m.DecidedAt),
		})
	}

	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func derefBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func derefTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
