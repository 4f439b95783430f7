package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

// Dispatcher composes and delivers match lifecycle messages. Delivery
// failures are reported to the caller but must never abort a pairing
// round; the engine logs and moves on.
type Dispatcher interface {
	Propose(ctx context.Context, recipient, partner *profile.User, matchID int64, score int, shared []string, forced bool) error
	NotifyMutual(ctx context.Context, recipient, partner *profile.User, matchID int64) error
	NotifyClosed(ctx context.Context, recipient *profile.User, matchID int64) error
	Broadcast(ctx context.Context, recipients []*profile.User, text string) (sent, failed int)
}

type dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) Dispatcher {
	return &dispatcher{sender: sender}
}

func (d *dispatcher) Propose(ctx context.Context, recipient, partner *profile.User, matchID int64, score int, shared []string, forced bool) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s! We found you a coffee partner: %s", recipient.DisplayName(), partner.DisplayName())
	if partner.City != nil && *partner.City != "" {
		fmt.Fprintf(&b, " from %s", *partner.City)
	}
	if partner.Profession != nil && *partner.Profession != "" {
		fmt.Fprintf(&b, " (%s)", *partner.Profession)
	}
	b.WriteString(".\n")

	if forced {
		b.WriteString("This one is a chance pairing, sometimes the best conversations come out of nowhere.\n")
	} else if len(shared) > 0 {
		fmt.Fprintf(&b, "You both are into: %s.\n", strings.Join(shared, ", "))
	}

	fmt.Fprintf(&b, "Compatibility score: %d. Accept or pass in the app.", score)

	return d.deliver(ctx, recipient, "Your coffee match is ready", b.String())
}

func (d *dispatcher) NotifyMutual(ctx context.Context, recipient, partner *profile.User, matchID int64) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Great news, %s! %s accepted too.\n", recipient.DisplayName(), partner.DisplayName())

	contact := partner.Contact()
	if contact != "" {
		fmt.Fprintf(&b, "Reach out here: %s\n", contact)
	}
	b.WriteString("Enjoy your coffee!")

	return d.deliver(ctx, recipient, "It's a match", b.String())
}

func (d *dispatcher) NotifyClosed(ctx context.Context, recipient *profile.User, matchID int64) error {
	// Neutral wording on purpose, the recipient is not told who passed
	body := fmt.Sprintf(
		"Hi %s, this week's pairing didn't work out. You'll be back in the pool for the next round.",
		recipient.DisplayName(),
	)

	return d.deliver(ctx, recipient, "About your coffee match", body)
}

func (d *dispatcher) Broadcast(ctx context.Context, recipients []*profile.User, text string) (sent, failed int) {
	for _, user := range recipients {
		if err := d.deliver(ctx, user, "A note from the Random Coffee team", text); err != nil {
			log.Printf("broadcast delivery to user %d failed: %v", user.UserID, err)
			failed++
			continue
		}
		sent++
	}

	return sent, failed
}

func (d *dispatcher) deliver(ctx context.Context, recipient *profile.User, subject, body string) error {
	address := recipient.Contact()
	if address == "" {
		return fmt.Errorf("user %d has no contact address", recipient.UserID)
	}

	return d.sender.Send(ctx, address, subject, body)
}
