package gateway

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedGateway pops a queued error per delete call so tests can script
// throttling and permission failures.
type scriptedGateway struct {
	*Memory
	deleteErrs map[MessageRef][]error
	deletes    []MessageRef
}

func newScriptedGateway(botID string) *scriptedGateway {
	return &scriptedGateway{
		Memory:     NewMemory(botID),
		deleteErrs: make(map[MessageRef][]error),
	}
}

func (g *scriptedGateway) failDelete(ref MessageRef, errs ...error) {
	g.deleteErrs[ref] = append(g.deleteErrs[ref], errs...)
}

func (g *scriptedGateway) DeleteMessage(ctx context.Context, ref MessageRef) error {
	g.deletes = append(g.deletes, ref)
	if queue := g.deleteErrs[ref]; len(queue) > 0 {
		g.deleteErrs[ref] = queue[1:]
		return queue[0]
	}
	return g.Memory.DeleteMessage(ctx, ref)
}

func newTestDispatcher(gw Gateway, cfg DispatcherConfig) (*Dispatcher, *[]time.Duration) {
	var slept []time.Duration
	d := NewDispatcher(gw, cfg)
	d.sleep = func(_ context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return nil
	}
	return d, &slept
}

func TestDeleteZeroRefIsNoop(t *testing.T) {
	gw := newScriptedGateway("bot")
	d, _ := newTestDispatcher(gw, DispatcherConfig{})

	if err := d.Delete(context.Background(), MessageRef{}); err != nil {
		t.Fatalf("delete zero ref: %v", err)
	}
	if len(gw.deletes) != 0 {
		t.Fatalf("deletes = %v, want none", gw.deletes)
	}
}

func TestDeleteMissingTargetSucceeds(t *testing.T) {
	gw := newScriptedGateway("bot")
	d, _ := newTestDispatcher(gw, DispatcherConfig{})

	ref := MessageRef{ChannelID: "chan", MessageID: "gone"}
	if err := d.Delete(context.Background(), ref); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if len(gw.deletes) != 1 {
		t.Fatalf("deletes = %d calls, want 1", len(gw.deletes))
	}
}

func TestDeleteRetriesOnceAfterThrottle(t *testing.T) {
	gw := newScriptedGateway("bot")
	ref := gw.SeedMessage("chan", "bot", "hi")
	gw.failDelete(ref, ErrRateLimited)

	d, slept := newTestDispatcher(gw, DispatcherConfig{RetryBackoff: time.Second})

	if err := d.Delete(context.Background(), ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(gw.deletes) != 2 {
		t.Fatalf("deletes = %d calls, want retry", len(gw.deletes))
	}
	if len(*slept) != 1 || (*slept)[0] != time.Second {
		t.Fatalf("slept = %v, want one backoff", *slept)
	}
}

func TestDeleteGivesUpAfterSecondThrottle(t *testing.T) {
	gw := newScriptedGateway("bot")
	ref := gw.SeedMessage("chan", "bot", "hi")
	gw.failDelete(ref, ErrRateLimited, ErrRateLimited)

	d, _ := newTestDispatcher(gw, DispatcherConfig{})

	err := d.Delete(context.Background(), ref)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want wrapped ErrRateLimited", err)
	}
	if len(gw.deletes) != 2 {
		t.Fatalf("deletes = %d calls, want exactly 2", len(gw.deletes))
	}
}

func TestDeleteFatalDoesNotRetry(t *testing.T) {
	gw := newScriptedGateway("bot")
	ref := gw.SeedMessage("chan", "bot", "hi")
	boom := errors.New("boom")
	gw.failDelete(ref, boom)

	d, slept := newTestDispatcher(gw, DispatcherConfig{})

	if err := d.Delete(context.Background(), ref); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if len(gw.deletes) != 1 {
		t.Fatalf("deletes = %d calls, want no retry", len(gw.deletes))
	}
	if len(*slept) != 0 {
		t.Fatalf("slept = %v, want none", *slept)
	}
}

func TestDirectMessageOpensChannel(t *testing.T) {
	gw := newScriptedGateway("bot")
	d, _ := newTestDispatcher(gw, DispatcherConfig{})

	if err := d.DirectMessage(context.Background(), "alice", Outbound{Content: "hi"}); err != nil {
		t.Fatalf("direct message: %v", err)
	}
	messages := gw.Messages("dm-alice")
	if len(messages) != 1 || messages[0].Content != "hi" {
		t.Fatalf("dm channel = %v, want the message", messages)
	}
}

func TestCleanupDeletesOnlyBotMessages(t *testing.T) {
	gw := newScriptedGateway("bot")
	gw.SeedMessage("dm-alice", "bot", "notice 1")
	gw.SeedMessage("dm-alice", "alice", "thanks")
	gw.SeedMessage("dm-alice", "bot", "notice 2")

	d, _ := newTestDispatcher(gw, DispatcherConfig{})

	summary, err := d.CleanupDirectMessages(context.Background(), "dm-alice")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if summary.Deleted != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 deleted", summary)
	}

	remaining := gw.Messages("dm-alice")
	if len(remaining) != 1 || remaining[0].AuthorID != "alice" {
		t.Fatalf("remaining = %v, want only the user's message", remaining)
	}
}

func TestCleanupPausesBetweenDeletes(t *testing.T) {
	gw := newScriptedGateway("bot")
	gw.SeedMessage("dm-alice", "bot", "one")
	gw.SeedMessage("dm-alice", "bot", "two")

	d, slept := newTestDispatcher(gw, DispatcherConfig{DeletePause: 500 * time.Millisecond})

	if _, err := d.CleanupDirectMessages(context.Background(), "dm-alice"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(*slept) != 2 {
		t.Fatalf("slept = %v, want a pause after each delete", *slept)
	}
	for _, dur := range *slept {
		if dur != 500*time.Millisecond {
			t.Fatalf("pause = %v, want 500ms", dur)
		}
	}
}

func TestCleanupDoublesPauseAfterThrottle(t *testing.T) {
	gw := newScriptedGateway("bot")
	first := gw.SeedMessage("dm-alice", "bot", "one")
	gw.SeedMessage("dm-alice", "bot", "two")
	gw.failDelete(first, ErrRateLimited)

	d, slept := newTestDispatcher(gw, DispatcherConfig{DeletePause: 500 * time.Millisecond})

	summary, err := d.CleanupDirectMessages(context.Background(), "dm-alice")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if summary.Deleted != 2 {
		t.Fatalf("summary = %+v, want both deleted after retry", summary)
	}

	// Newest first: "two" deletes at the base pause, then "one" is throttled,
	// waits the doubled pause, retries, and every later pause stays doubled.
	want := []time.Duration{500 * time.Millisecond, time.Second, time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept = %v, want %v", *slept, want)
	}
	for i, dur := range want {
		if (*slept)[i] != dur {
			t.Fatalf("slept = %v, want %v", *slept, want)
		}
	}
}

func TestCleanupCountsForbiddenAsFailed(t *testing.T) {
	gw := newScriptedGateway("bot")
	blocked := gw.SeedMessage("dm-alice", "bot", "one")
	gw.SeedMessage("dm-alice", "bot", "two")
	gw.failDelete(blocked, ErrForbidden)

	d, _ := newTestDispatcher(gw, DispatcherConfig{})

	summary, err := d.CleanupDirectMessages(context.Background(), "dm-alice")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if summary.Deleted != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want one deleted one failed", summary)
	}
}

func TestCleanupHonorsScanLimit(t *testing.T) {
	gw := newScriptedGateway("bot")
	gw.SeedMessage("dm-alice", "bot", "old")
	gw.SeedMessage("dm-alice", "bot", "new")

	d, _ := newTestDispatcher(gw, DispatcherConfig{ScanLimit: 1})

	summary, err := d.CleanupDirectMessages(context.Background(), "dm-alice")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if summary.Deleted != 1 {
		t.Fatalf("summary = %+v, want only the newest deleted", summary)
	}
	remaining := gw.Messages("dm-alice")
	if len(remaining) != 1 || remaining[0].Content != "old" {
		t.Fatalf("remaining = %v, want the old message kept", remaining)
	}
}
