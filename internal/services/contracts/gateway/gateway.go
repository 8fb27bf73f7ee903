// Package gateway is the seam between the contract lifecycle and the chat
// platform. The platform session itself (connection, reconnects, command
// routing) lives outside this repo; implementations of Gateway adapt it.
// The package also classifies platform-call failures so callers can apply one
// retry/ignore policy everywhere.
package gateway

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the target message or channel is already gone.
	ErrNotFound = errors.New("platform target not found")
	// ErrForbidden indicates the platform denied the call, typically a
	// permission or privacy setting.
	ErrForbidden = errors.New("platform call forbidden")
	// ErrRateLimited indicates the platform throttled the call.
	ErrRateLimited = errors.New("platform call rate limited")
)

// MessageRef identifies one platform-hosted message.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// IsZero reports whether the reference points at no message.
func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" && r.MessageID == ""
}

// Message is one platform message as seen when scanning channel history.
type Message struct {
	Ref      MessageRef
	AuthorID string
	Content  string
}

// Outbound is one message to post. CleanupAction attaches the clear-DM
// affordance to the message where the platform supports interactive actions.
type Outbound struct {
	Content       string
	CleanupAction bool
}

// Gateway is the minimal platform surface the contract lifecycle needs.
// Implementations wrap platform SDK failures in ErrNotFound, ErrForbidden,
// or ErrRateLimited where they can tell; anything else is classified by
// Classify as transient or fatal.
type Gateway interface {
	// BotUserID returns the bot's own user identity, used to recognize
	// bot-authored messages during direct-channel cleanup.
	BotUserID() string

	PostMessage(ctx context.Context, channelID string, msg Outbound) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, msg Outbound) error
	DeleteMessage(ctx context.Context, ref MessageRef) error

	// OpenDirectChannel returns the direct channel for the user, creating
	// it if the platform has none yet.
	OpenDirectChannel(ctx context.Context, userID string) (string, error)

	// RecentMessages lists up to limit of the newest messages in a channel.
	// Platforms cap deletion to a recent window; older messages are simply
	// never returned here.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
}
