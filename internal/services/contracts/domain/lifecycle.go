package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
)

const (
	reminderLeadFive = 5 * time.Minute
	reminderLeadTwo  = 2 * time.Minute
)

// Messenger is the outbound platform surface the controller drives. The
// gateway dispatcher implements it; the controller never holds a lock across
// any of these calls.
type Messenger interface {
	Post(ctx context.Context, channelID string, msg gateway.Outbound) (gateway.MessageRef, error)
	Edit(ctx context.Context, ref gateway.MessageRef, msg gateway.Outbound) error
	Delete(ctx context.Context, ref gateway.MessageRef) error
	DirectMessage(ctx context.Context, userID string, msg gateway.Outbound) error
}

// Renderer produces the user-facing copy for every lifecycle message.
type Renderer interface {
	Roster(contract Contract, remaining time.Duration) string
	Reminder(slot ReminderSlot) string
	ContractStarted(contract Contract) string
	ContractCancelled(contract Contract) string
	CreatorClosureNotice(contract Contract) string
	ClosureAnnouncement() string
}

// Recorder captures lifecycle audit events. Recording failures never block
// the lifecycle.
type Recorder interface {
	Record(ctx context.Context, kind, contractID, detail string)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string, string) {}

// Timing fixes the lifecycle schedule. Reminders are anchored to expiry: the
// first fires five minutes before the window ends, the second two minutes
// before, so a shrunken window keeps the warnings meaningful.
type Timing struct {
	JoinWindow        time.Duration
	AnnouncementDelay time.Duration
	AnnouncementTTL   time.Duration
	Retention         time.Duration
}

func (t Timing) normalized() Timing {
	if t.JoinWindow <= 0 {
		t.JoinWindow = 10 * time.Minute
	}
	if t.AnnouncementDelay <= 0 {
		t.AnnouncementDelay = 30 * time.Second
	}
	if t.AnnouncementTTL <= 0 {
		t.AnnouncementTTL = 5 * time.Minute
	}
	if t.Retention <= 0 {
		t.Retention = 2 * time.Hour
	}
	return t
}

// JoinResult reports the outcome of a join request.
type JoinResult int

const (
	// JoinAdded means the user is now on the roster.
	JoinAdded JoinResult = iota
	// JoinAlreadyMember means the user was on the roster already.
	JoinAlreadyMember
	// JoinClosed means recruitment already finished.
	JoinClosed
)

// Summary is a read-only view of one open contract.
type Summary struct {
	ContractID   string
	Creator      string
	Participants int
	Remaining    time.Duration
}

// Controller owns every contract state transition. Store mutations happen
// under the store's lock; platform I/O happens outside it, and every
// timer-driven callback re-checks the store before acting so a timer that
// fired during cancellation stays invisible.
type Controller struct {
	store  *Store
	timers *TimerEngine
	msg    Messenger
	render Renderer
	audit  Recorder
	timing Timing
	clock  func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu  sync.Mutex
	ctx context.Context
}

// NewController wires the lifecycle controller. A nil recorder disables
// auditing; a nil clock defaults to time.Now.
func NewController(store *Store, timers *TimerEngine, msg Messenger, render Renderer, audit Recorder, timing Timing, clock func() time.Time) *Controller {
	if audit == nil {
		audit = nopRecorder{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Controller{
		store:  store,
		timers: timers,
		msg:    msg,
		render: render,
		audit:  audit,
		timing: timing.normalized(),
		clock:  clock,
		sleep:  sleepContext,
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

// Start records the lifetime context used by timer-driven work.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// Shutdown cancels every outstanding timer. In-memory contract state is
// intentionally lost with the process.
func (c *Controller) Shutdown() {
	c.timers.Stop()
}

func (c *Controller) runCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// CreateContract opens recruitment: it inserts the contract with the creator
// as first participant, arms the reminder and expiry timers, and posts the
// roster message. A failed post rolls the insertion back so the creator is
// free to retry; no half-created contract survives.
func (c *Controller) CreateContract(ctx context.Context, channelID, interactionID, creator string) (Contract, error) {
	contractID := channelID + "-" + interactionID

	contract, err := c.store.Create(contractID, creator)
	if err != nil {
		return Contract{}, err
	}

	if delay := c.timing.JoinWindow - reminderLeadFive; delay > 0 {
		c.timers.Schedule(contractID, TimerReminderFive, delay, func(id string) {
			c.fireReminder(id, ReminderFiveMinutes)
		})
	}
	if delay := c.timing.JoinWindow - reminderLeadTwo; delay > 0 {
		c.timers.Schedule(contractID, TimerReminderTwo, delay, func(id string) {
			c.fireReminder(id, ReminderTwoMinutes)
		})
	}
	c.timers.Schedule(contractID, TimerExpiry, c.timing.JoinWindow, c.expire)

	content := c.render.Roster(contract, c.timing.JoinWindow)
	ref, err := c.msg.Post(ctx, channelID, gateway.Outbound{Content: content})
	if err != nil {
		c.timers.CancelAll(contractID)
		if _, discardErr := c.store.Discard(contractID); discardErr != nil && !errors.Is(discardErr, ErrNotFound) && !errors.Is(discardErr, ErrContractClosed) {
			log.Printf("roll back contract %s: %v", contractID, discardErr)
		}
		return Contract{}, fmt.Errorf("post roster message: %w", err)
	}

	if err := c.store.SetPrimaryMessage(contractID, ref); err != nil {
		// The contract closed or vanished while the post was in flight; the
		// roster message is orphaned, so take it back down.
		if delErr := c.msg.Delete(ctx, ref); delErr != nil {
			log.Printf("delete orphaned roster message for %s: %v", contractID, delErr)
		}
		return Contract{}, fmt.Errorf("record roster message: %w", err)
	}
	contract.PrimaryMessage = ref

	c.audit.Record(ctx, "contract_created", contractID, creator)
	return contract, nil
}

// Join adds the user to an open contract and re-renders the roster message
// with the live participant list and remaining time. Joining twice is a
// distinct no-op, not an error.
func (c *Controller) Join(ctx context.Context, contractID, userID string) (JoinResult, error) {
	snapshot, added, err := c.store.AddParticipant(contractID, userID)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrContractClosed):
		return JoinClosed, nil
	case err != nil:
		return JoinClosed, err
	case !added:
		return JoinAlreadyMember, nil
	}

	c.audit.Record(ctx, "participant_joined", contractID, userID)
	c.refreshRoster(ctx, snapshot)
	return JoinAdded, nil
}

func (c *Controller) refreshRoster(ctx context.Context, snapshot Contract) {
	if snapshot.PrimaryMessage.IsZero() {
		return
	}
	remaining := snapshot.Remaining(c.clock(), c.timing.JoinWindow)
	content := c.render.Roster(snapshot, remaining)
	if err := c.msg.Edit(ctx, snapshot.PrimaryMessage, gateway.Outbound{Content: content}); err != nil {
		log.Printf("update roster message for %s: %v", snapshot.ID, err)
	}
}

// Cancel removes the creator's contract without closure notifications: timers
// stop, reminders and the roster message are deleted, and the contract leaves
// the store with no archive entry.
func (c *Controller) Cancel(ctx context.Context, userID string) error {
	current, ok := c.store.ByCreator(userID)
	if !ok {
		return ErrNoActiveContract
	}

	snapshot, err := c.store.Discard(current.ID)
	if err != nil {
		return ErrNoActiveContract
	}
	c.timers.CancelAll(snapshot.ID)

	for _, ref := range snapshot.Reminders {
		if err := c.msg.Delete(ctx, ref); err != nil {
			log.Printf("delete reminder for %s: %v", snapshot.ID, err)
		}
	}
	if !snapshot.PrimaryMessage.IsZero() {
		if err := c.msg.Delete(ctx, snapshot.PrimaryMessage); err != nil {
			log.Printf("delete roster message for %s: %v", snapshot.ID, err)
		}
	}

	c.audit.Record(ctx, "contract_cancelled", snapshot.ID, userID)
	return nil
}

// ForceClose runs the full closure sequence for the creator's contract now,
// identically to natural expiry. A close that races the expiry timer
// surfaces ErrContractClosed; the store guarantees only one of the two
// callers runs the sequence.
func (c *Controller) ForceClose(ctx context.Context, userID string) error {
	current, ok := c.store.ByCreator(userID)
	if !ok {
		return ErrNoActiveContract
	}
	_, err := c.closeContract(ctx, current.ID)
	return err
}

// List returns a read-only snapshot of every open contract.
func (c *Controller) List() []Summary {
	now := c.clock()
	contracts := c.store.OpenContracts()
	out := make([]Summary, 0, len(contracts))
	for _, contract := range contracts {
		out = append(out, Summary{
			ContractID:   contract.ID,
			Creator:      contract.Creator,
			Participants: len(contract.Participants),
			Remaining:    contract.Remaining(now, c.timing.JoinWindow),
		})
	}
	return out
}

// SweepArchive deletes the roster messages of archive records past the
// retention window, then purges the records regardless of deletion outcome.
func (c *Controller) SweepArchive(ctx context.Context, now time.Time) {
	cutoff := now.Add(-c.timing.Retention)
	for _, record := range c.store.ArchivedBefore(cutoff) {
		if !record.Message.IsZero() {
			if err := c.msg.Delete(ctx, record.Message); err != nil {
				log.Printf("reap roster message for %s: %v", record.ContractID, err)
			}
		}
		c.store.Purge(record.ContractID)
		c.audit.Record(ctx, "contract_purged", record.ContractID, "")
	}
}

// fireReminder posts one pre-expiry warning. The contract is re-checked
// first because the timer can race cancellation; a reminder whose contract
// closed while the post was in flight is taken back down so no warning
// outlives its contract.
func (c *Controller) fireReminder(contractID string, slot ReminderSlot) {
	ctx := c.runCtx()

	snapshot, ok := c.store.Get(contractID)
	if !ok || snapshot.State != StateOpen {
		return
	}

	channelID := snapshot.PrimaryMessage.ChannelID
	if channelID == "" {
		return
	}
	ref, err := c.msg.Post(ctx, channelID, gateway.Outbound{Content: c.render.Reminder(slot)})
	if err != nil {
		log.Printf("post reminder for %s: %v", contractID, err)
		return
	}
	if err := c.store.SetReminder(contractID, slot, ref); err != nil {
		if delErr := c.msg.Delete(ctx, ref); delErr != nil {
			log.Printf("delete stray reminder for %s: %v", contractID, delErr)
		}
		return
	}

	detail := "5m"
	if slot == ReminderTwoMinutes {
		detail = "2m"
	}
	c.audit.Record(ctx, "reminder_posted", contractID, detail)
}

func (c *Controller) expire(contractID string) {
	ctx := c.runCtx()
	if _, err := c.closeContract(ctx, contractID); err != nil && !errors.Is(err, ErrContractClosed) && !errors.Is(err, ErrNotFound) {
		log.Printf("expire contract %s: %v", contractID, err)
	}
}

// closeContract is the single closure sequence shared by expiry and forced
// close. The store's one-shot open→closed transition is the idempotence
// guard; everything after it runs at most once per contract.
func (c *Controller) closeContract(ctx context.Context, contractID string) (Contract, error) {
	snapshot, err := c.store.Close(contractID)
	if err != nil {
		return Contract{}, err
	}

	c.timers.CancelAll(contractID)

	for _, ref := range snapshot.Reminders {
		if err := c.msg.Delete(ctx, ref); err != nil {
			log.Printf("delete reminder for %s: %v", contractID, err)
		}
	}

	var final string
	if len(snapshot.Recruits()) > 0 {
		final = c.render.ContractStarted(snapshot)
	} else {
		final = c.render.ContractCancelled(snapshot)
	}
	if !snapshot.PrimaryMessage.IsZero() {
		if err := c.msg.Edit(ctx, snapshot.PrimaryMessage, gateway.Outbound{Content: final}); err != nil {
			log.Printf("finalize roster message for %s: %v", contractID, err)
		}
	}

	notice := gateway.Outbound{Content: c.render.CreatorClosureNotice(snapshot), CleanupAction: true}
	if err := c.msg.DirectMessage(ctx, snapshot.Creator, notice); err != nil {
		// Privacy settings can block creator DMs; closure proceeds anyway.
		log.Printf("notify creator %s for %s: %v", snapshot.Creator, contractID, err)
	}

	if err := c.sleep(ctx, c.timing.AnnouncementDelay); err == nil {
		c.postClosureAnnouncement(ctx, snapshot)
	}

	c.store.Archive(contractID, snapshot.PrimaryMessage)
	c.audit.Record(ctx, "contract_closed", contractID, fmt.Sprintf("participants=%d", len(snapshot.Participants)))
	return snapshot, nil
}

func (c *Controller) postClosureAnnouncement(ctx context.Context, snapshot Contract) {
	channelID := snapshot.PrimaryMessage.ChannelID
	if channelID == "" {
		return
	}
	ref, err := c.msg.Post(ctx, channelID, gateway.Outbound{Content: c.render.ClosureAnnouncement()})
	if err != nil {
		log.Printf("post closure announcement for %s: %v", snapshot.ID, err)
		return
	}
	contractID := snapshot.ID
	c.timers.ScheduleDetached(c.timing.AnnouncementTTL, func() {
		if err := c.msg.Delete(c.runCtx(), ref); err != nil {
			log.Printf("delete closure announcement for %s: %v", contractID, err)
		}
	})
}
