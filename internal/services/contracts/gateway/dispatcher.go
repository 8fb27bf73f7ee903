package gateway

import (
	"context"
	"fmt"
	"log"
	"time"
)

const (
	defaultDeletePause  = 500 * time.Millisecond
	defaultRetryBackoff = time.Second
	defaultScanLimit    = 200
	maxDeleteAttempts   = 2
)

// DispatcherConfig tunes outbound call policy.
type DispatcherConfig struct {
	// DeletePause is the fixed pause between direct-channel deletes. The
	// platform rate-limits per DM channel, so bulk deletes are serialized.
	DeletePause time.Duration
	// RetryBackoff is the wait before the single delete retry.
	RetryBackoff time.Duration
	// ScanLimit bounds the history window scanned during cleanup; older
	// messages are not deletable and are skipped, not errored.
	ScanLimit int
}

func (c DispatcherConfig) normalized() DispatcherConfig {
	if c.DeletePause <= 0 {
		c.DeletePause = defaultDeletePause
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.ScanLimit <= 0 {
		c.ScanLimit = defaultScanLimit
	}
	return c
}

// CleanupSummary reports one direct-channel cleanup pass.
type CleanupSummary struct {
	Deleted int
	Failed  int
}

// Dispatcher wraps every outbound platform call with outcome classification
// and the retry/ignore policy the lifecycle controller relies on. It never
// touches contract state.
type Dispatcher struct {
	gw    Gateway
	cfg   DispatcherConfig
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher wraps a gateway with the default call policy.
func NewDispatcher(gw Gateway, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		gw:    gw,
		cfg:   cfg.normalized(),
		sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Post publishes a channel message.
func (d *Dispatcher) Post(ctx context.Context, channelID string, msg Outbound) (MessageRef, error) {
	ref, err := d.gw.PostMessage(ctx, channelID, msg)
	if err != nil {
		return MessageRef{}, fmt.Errorf("post message to channel %s: %w", channelID, err)
	}
	return ref, nil
}

// Edit rewrites an existing message in place.
func (d *Dispatcher) Edit(ctx context.Context, ref MessageRef, msg Outbound) error {
	if err := d.gw.EditMessage(ctx, ref, msg); err != nil {
		return fmt.Errorf("edit message %s/%s: %w", ref.ChannelID, ref.MessageID, err)
	}
	return nil
}

// Delete removes a message. A target that is already gone counts as success;
// throttled or transient failures get exactly one retry after a backoff.
func (d *Dispatcher) Delete(ctx context.Context, ref MessageRef) error {
	if ref.IsZero() {
		return nil
	}
	var lastErr error
	for attempt := 0; attempt < maxDeleteAttempts; attempt++ {
		err := d.gw.DeleteMessage(ctx, ref)
		switch Classify(err) {
		case OutcomeOK, OutcomeNotFound:
			return nil
		case OutcomeRateLimited, OutcomeTransient:
			lastErr = err
			if sleepErr := d.sleep(ctx, d.cfg.RetryBackoff); sleepErr != nil {
				return sleepErr
			}
		default:
			return fmt.Errorf("delete message %s/%s: %w", ref.ChannelID, ref.MessageID, err)
		}
	}
	return fmt.Errorf("delete message %s/%s: %w", ref.ChannelID, ref.MessageID, lastErr)
}

// OpenDirectChannel resolves the user's direct channel. Forbidden propagates
// so callers can decide whether the denial reaches a user.
func (d *Dispatcher) OpenDirectChannel(ctx context.Context, userID string) (string, error) {
	channelID, err := d.gw.OpenDirectChannel(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("open direct channel for %s: %w", userID, err)
	}
	return channelID, nil
}

// DirectMessage delivers a message to the user's direct channel.
func (d *Dispatcher) DirectMessage(ctx context.Context, userID string, msg Outbound) error {
	channelID, err := d.OpenDirectChannel(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := d.gw.PostMessage(ctx, channelID, msg); err != nil {
		return fmt.Errorf("direct message %s: %w", userID, err)
	}
	return nil
}

// CleanupDirectMessages deletes bot-authored messages from a direct channel,
// one at a time with a fixed pause between deletes. The pause doubles after a
// throttling response. The scan is capped to the recent-message window.
func (d *Dispatcher) CleanupDirectMessages(ctx context.Context, channelID string) (CleanupSummary, error) {
	messages, err := d.gw.RecentMessages(ctx, channelID, d.cfg.ScanLimit)
	if err != nil {
		return CleanupSummary{}, fmt.Errorf("scan direct channel %s: %w", channelID, err)
	}

	summary := CleanupSummary{}
	pause := d.cfg.DeletePause
	botID := d.gw.BotUserID()
	for _, message := range messages {
		if message.AuthorID != botID {
			continue
		}
		outcome := Classify(d.gw.DeleteMessage(ctx, message.Ref))
		if outcome == OutcomeRateLimited || outcome == OutcomeTransient {
			if outcome == OutcomeRateLimited {
				pause *= 2
			}
			if err := d.sleep(ctx, pause); err != nil {
				return summary, err
			}
			outcome = Classify(d.gw.DeleteMessage(ctx, message.Ref))
		}
		switch outcome {
		case OutcomeOK:
			summary.Deleted++
		case OutcomeNotFound:
			// Already gone, nothing to count.
		case OutcomeForbidden:
			summary.Failed++
			log.Printf("cleanup: no permission to delete message %s/%s", message.Ref.ChannelID, message.Ref.MessageID)
		default:
			summary.Failed++
			log.Printf("cleanup: delete message %s/%s: %s", message.Ref.ChannelID, message.Ref.MessageID, outcome)
		}
		if err := d.sleep(ctx, pause); err != nil {
			return summary, err
		}
	}
	return summary, nil
}
