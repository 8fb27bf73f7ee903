package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sasabodun/kontraktbot/internal/platform/id"
)

// Memory is an in-memory Gateway. It backs offline runs of the bot binary,
// where no platform session is wired, and the lifecycle tests.
type Memory struct {
	mu         sync.Mutex
	botID      string
	channels   map[string][]Message
	dmChannels map[string]string
	seeded     int
}

// NewMemory creates an empty in-memory gateway acting as the given bot user.
func NewMemory(botID string) *Memory {
	return &Memory{
		botID:      botID,
		channels:   make(map[string][]Message),
		dmChannels: make(map[string]string),
	}
}

// BotUserID implements Gateway.
func (m *Memory) BotUserID() string {
	return m.botID
}

// PostMessage implements Gateway.
func (m *Memory) PostMessage(_ context.Context, channelID string, msg Outbound) (MessageRef, error) {
	messageID, err := id.NewID()
	if err != nil {
		return MessageRef{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ref := MessageRef{ChannelID: channelID, MessageID: messageID}
	m.channels[channelID] = append(m.channels[channelID], Message{
		Ref:      ref,
		AuthorID: m.botID,
		Content:  msg.Content,
	})
	return ref, nil
}

// EditMessage implements Gateway.
func (m *Memory) EditMessage(_ context.Context, ref MessageRef, msg Outbound) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.channels[ref.ChannelID]
	for i := range messages {
		if messages[i].Ref == ref {
			messages[i].Content = msg.Content
			return nil
		}
	}
	return ErrNotFound
}

// DeleteMessage implements Gateway.
func (m *Memory) DeleteMessage(_ context.Context, ref MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.channels[ref.ChannelID]
	for i := range messages {
		if messages[i].Ref == ref {
			m.channels[ref.ChannelID] = append(messages[:i:i], messages[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// OpenDirectChannel implements Gateway.
func (m *Memory) OpenDirectChannel(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channelID, ok := m.dmChannels[userID]; ok {
		return channelID, nil
	}
	channelID := "dm-" + userID
	m.dmChannels[userID] = channelID
	return channelID, nil
}

// RecentMessages implements Gateway, returning newest first.
func (m *Memory) RecentMessages(_ context.Context, channelID string, limit int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.channels[channelID]
	out := make([]Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, messages[i])
	}
	return out, nil
}

// Messages returns the channel's messages oldest first, for assertions.
func (m *Memory) Messages(channelID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.channels[channelID]...)
}

// SeedMessage inserts a message authored by an arbitrary user. Seeded
// messages carry sequential IDs so fixtures stay deterministic.
func (m *Memory) SeedMessage(channelID, authorID, content string) MessageRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seeded++
	ref := MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("seed-%d", m.seeded)}
	m.channels[channelID] = append(m.channels[channelID], Message{
		Ref:      ref,
		AuthorID: authorID,
		Content:  content,
	})
	return ref
}
