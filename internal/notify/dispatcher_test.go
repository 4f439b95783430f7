package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkotelnikov/coffeematch-backend/internal/notify"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

type capturedMessage struct {
	to      string
	subject string
	body    string
}

type captureSender struct {
	messages []capturedMessage
	failFor  string
}

func (s *captureSender) Send(ctx context.Context, to, subject, body string) error {
	if to == s.failFor {
		return errors.New("simulated delivery failure")
	}
	s.messages = append(s.messages, capturedMessage{to: to, subject: subject, body: body})
	return nil
}

func testUser(id int64, name, contact string) *profile.User {
	u := &profile.User{UserID: id}
	if name != "" {
		u.Name = &name
	}
	if contact != "" {
		u.ContactLink = &contact
	}
	return u
}

func TestProposeMentionsPartnerAndScore(t *testing.T) {
	sender := &captureSender{}
	d := notify.NewDispatcher(sender)

	recipient := testUser(1, "Maria", "maria@test.local")
	partner := testUser(2, "Pavel", "pavel@test.local")

	err := d.Propose(context.Background(), recipient, partner, 3, 75, []string{"chess"}, false)

	require.NoError(t, err)
	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "maria@test.local", msg.to)
	assert.Contains(t, msg.body, "Pavel")
	assert.Contains(t, msg.body, "chess")
	assert.Contains(t, msg.body, "75")
}

func TestProposeForcedSkipsSharedInterests(t *testing.T) {
	sender := &captureSender{}
	d := notify.NewDispatcher(sender)

	err := d.Propose(context.Background(),
		testUser(1, "Maria", "maria@test.local"),
		testUser(2, "Pavel", "pavel@test.local"),
		3, 20, []string{"chance pairing"}, true)

	require.NoError(t, err)
	assert.Contains(t, sender.messages[0].body, "chance pairing")
	assert.NotContains(t, sender.messages[0].body, "You both are into")
}

func TestNotifyMutualRevealsContact(t *testing.T) {
	sender := &captureSender{}
	d := notify.NewDispatcher(sender)

	err := d.NotifyMutual(context.Background(),
		testUser(1, "Maria", "maria@test.local"),
		testUser(2, "Pavel", "pavel@test.local"), 3)

	require.NoError(t, err)
	assert.Contains(t, sender.messages[0].body, "pavel@test.local")
}

func TestDeliveryWithoutContactFails(t *testing.T) {
	d := notify.NewDispatcher(&captureSender{})

	err := d.NotifyClosed(context.Background(), testUser(1, "Maria", ""), 3)

	assert.Error(t, err)
}

func TestBroadcastCountsFailures(t *testing.T) {
	sender := &captureSender{failFor: "pavel@test.local"}
	d := notify.NewDispatcher(sender)

	recipients := []*profile.User{
		testUser(1, "Maria", "maria@test.local"),
		testUser(2, "Pavel", "pavel@test.local"),
		testUser(3, "Olga", "olga@test.local"),
	}

	sent, failed := d.Broadcast(context.Background(), recipients, "Coffee rounds resume Monday")

	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
	require.Len(t, sender.messages, 2)
	assert.Contains(t, sender.messages[0].body, "resume Monday")
}
