package domain

import (
	"time"

	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
)

// State identifies one contract lifecycle phase.
type State string

const (
	// StateOpen means the contract accepts joins.
	StateOpen State = "open"
	// StateClosed means recruitment finished and closure notifications are
	// in flight; the contract still occupies the active map until archival.
	StateClosed State = "closed"
	// StateArchived means only the stale roster message remains, retained
	// for the reaper to delete.
	StateArchived State = "archived"
)

// ReminderSlot identifies one of the two pre-expiry warning messages.
type ReminderSlot int

const (
	// ReminderFiveMinutes is the warning posted five minutes before expiry.
	ReminderFiveMinutes ReminderSlot = iota
	// ReminderTwoMinutes is the warning posted two minutes before expiry.
	ReminderTwoMinutes

	reminderSlots
)

// Contract is one time-boxed recruitment post.
type Contract struct {
	ID             string
	Creator        string
	Participants   []string
	State          State
	CreatedAt      time.Time
	PrimaryMessage gateway.MessageRef
	Reminders      [reminderSlots]gateway.MessageRef
}

// Recruits returns the participants other than the creator. The creator is
// always on the roster, so closure outcomes key off whether anyone else
// signed up.
func (c Contract) Recruits() []string {
	var out []string
	for _, p := range c.Participants {
		if p != c.Creator {
			out = append(out, p)
		}
	}
	return out
}

// HasParticipant reports whether userID is already on the roster.
func (c Contract) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Remaining returns the time left in the join window, clamped to zero.
func (c Contract) Remaining(now time.Time, window time.Duration) time.Duration {
	left := window - now.Sub(c.CreatedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (c Contract) snapshot() Contract {
	out := c
	out.Participants = append([]string(nil), c.Participants...)
	return out
}

// ArchiveRecord retains just enough of a finished contract for the reaper to
// delete its stale roster message.
type ArchiveRecord struct {
	ContractID string
	Message    gateway.MessageRef
	ArchivedAt time.Time
}
