package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	kerrors "github.com/Sasabodun/kontraktbot/internal/errors"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/domain"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
)

func newTestBot(t *testing.T) (*Bot, *gateway.Memory) {
	t.Helper()

	gw := gateway.NewMemory("bot")
	bot, err := New(RuntimeConfig{
		DBPath:            filepath.Join(t.TempDir(), "bot.db"),
		Locale:            "en",
		AnnouncementDelay: time.Millisecond,
		Gateway:           gw,
	})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	t.Cleanup(func() {
		if err := bot.Close(); err != nil {
			t.Errorf("close bot: %v", err)
		}
	})
	return bot, gw
}

func TestFailureCode(t *testing.T) {
	cases := []struct {
		err  error
		want kerrors.Code
	}{
		{domain.ErrDuplicateContract, kerrors.CodeDuplicateContract},
		{domain.ErrCreatorActive, kerrors.CodeAlreadyActive},
		{domain.ErrNoActiveContract, kerrors.CodeNotFound},
		{fmt.Errorf("close: %w", domain.ErrContractClosed), kerrors.CodeAlreadyClosed},
		{gateway.ErrForbidden, kerrors.CodeForbidden},
		{gateway.ErrRateLimited, kerrors.CodeTransient},
		{errors.New("boom"), kerrors.CodeFatal},
	}
	for _, tc := range cases {
		if got := failureCode(tc.err); got != tc.want {
			t.Fatalf("failureCode(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestCreateContractPostsRoster(t *testing.T) {
	bot, gw := newTestBot(t)
	ctx := context.Background()

	if reply := bot.CreateContract(ctx, "chan", "i1", "alice"); reply != "" {
		t.Fatalf("reply = %q, want the roster message to speak for itself", reply)
	}
	messages := gw.Messages("chan")
	if len(messages) != 1 || !strings.Contains(messages[0].Content, "<@alice>") {
		t.Fatalf("channel = %v, want the roster post", messages)
	}

	reply := bot.CreateContract(ctx, "chan", "i2", "alice")
	if !strings.Contains(reply, "already have an active contract") {
		t.Fatalf("reply = %q, want the active-contract refusal", reply)
	}
}

func TestJoinContractReplies(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()

	bot.CreateContract(ctx, "chan", "i1", "alice")

	if reply := bot.JoinContract(ctx, "chan-i1", "bob"); !strings.Contains(reply, "signed up for the contract") {
		t.Fatalf("reply = %q, want the signed-up confirmation", reply)
	}
	if reply := bot.JoinContract(ctx, "chan-i1", "bob"); !strings.Contains(reply, "already signed up") {
		t.Fatalf("reply = %q, want the already-signed-up notice", reply)
	}
	if reply := bot.JoinContract(ctx, "chan-i9", "bob"); !strings.Contains(reply, "already finished") {
		t.Fatalf("reply = %q, want the closed notice", reply)
	}
}

func TestCancelContractReplies(t *testing.T) {
	bot, gw := newTestBot(t)
	ctx := context.Background()

	bot.CreateContract(ctx, "chan", "i1", "alice")

	if reply := bot.CancelContract(ctx, "alice"); !strings.Contains(reply, "cancelled") {
		t.Fatalf("reply = %q, want the cancel confirmation", reply)
	}
	if messages := gw.Messages("chan"); len(messages) != 0 {
		t.Fatalf("channel = %v, want the roster removed", messages)
	}
	if reply := bot.CancelContract(ctx, "alice"); !strings.Contains(reply, "no active contracts") {
		t.Fatalf("reply = %q, want the no-contract notice", reply)
	}
}

func TestForceCloseContractReplies(t *testing.T) {
	bot, gw := newTestBot(t)
	ctx := context.Background()

	bot.CreateContract(ctx, "chan", "i1", "alice")
	bot.JoinContract(ctx, "chan-i1", "bob")

	if reply := bot.ForceCloseContract(ctx, "alice"); !strings.Contains(reply, "closed early") {
		t.Fatalf("reply = %q, want the early-close confirmation", reply)
	}

	messages := gw.Messages("chan")
	var sawFinal, sawAnnouncement bool
	for _, msg := range messages {
		if strings.Contains(msg.Content, "under way") {
			sawFinal = true
		}
		if strings.Contains(msg.Content, "recruitment is closed") {
			sawAnnouncement = true
		}
	}
	if !sawFinal || !sawAnnouncement {
		t.Fatalf("channel = %v, want final roster and closure announcement", messages)
	}

	dms := gw.Messages("dm-alice")
	if len(dms) != 1 || !strings.Contains(dms[0].Content, "<@bob>") {
		t.Fatalf("creator dm = %v, want the team roster", dms)
	}

	if reply := bot.ForceCloseContract(ctx, "alice"); !strings.Contains(reply, "no active contracts") {
		t.Fatalf("reply = %q, want the no-contract notice", reply)
	}
}

func TestForceCloseRecordsAudit(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()

	bot.CreateContract(ctx, "chan", "i1", "alice")
	bot.ForceCloseContract(ctx, "alice")

	events, err := bot.audit.ListAuditEvents(ctx, "chan-i1", 10)
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	kinds := make([]string, 0, len(events))
	for _, event := range events {
		kinds = append(kinds, event.Kind)
	}
	want := []string{"contract_created", "contract_closed"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
}

func TestListContracts(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()

	if reply := bot.ListContracts(ctx); !strings.Contains(reply, "No active") {
		t.Fatalf("reply = %q, want the empty notice", reply)
	}

	bot.CreateContract(ctx, "chan", "i1", "alice")
	if reply := bot.ListContracts(ctx); !strings.Contains(reply, "<@alice>") {
		t.Fatalf("reply = %q, want alice's contract listed", reply)
	}
}

// closedDMGateway denies direct-channel opening, as a user's privacy
// settings would.
type closedDMGateway struct {
	*gateway.Memory
}

func (closedDMGateway) OpenDirectChannel(context.Context, string) (string, error) {
	return "", gateway.ErrForbidden
}

func TestCleanupForUser(t *testing.T) {
	bot, gw := newTestBot(t)
	ctx := context.Background()

	gw.SeedMessage("dm-alice", "bot", "old notice")

	if reply := bot.CleanupForUser(ctx, "alice"); !strings.Contains(reply, "1") {
		t.Fatalf("reply = %q, want one deletion reported", reply)
	}
}

func TestCleanupForUserForbidden(t *testing.T) {
	bot, err := New(RuntimeConfig{
		DBPath:  filepath.Join(t.TempDir(), "bot.db"),
		Locale:  "en",
		Gateway: closedDMGateway{gateway.NewMemory("bot")},
	})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	defer bot.Close()

	reply := bot.CleanupForUser(context.Background(), "alice")
	if !strings.Contains(reply, "privacy settings") {
		t.Fatalf("reply = %q, want the privacy hint", reply)
	}
}

func TestCleanupDirectChannel(t *testing.T) {
	bot, gw := newTestBot(t)
	ctx := context.Background()

	gw.SeedMessage("dm-alice", "bot", "old notice")
	gw.SeedMessage("dm-alice", "alice", "hello")

	if reply := bot.CleanupPrompt(); !strings.Contains(reply, "cleanup") {
		t.Fatalf("reply = %q, want the cleanup prompt", reply)
	}

	reply := bot.CleanupDirectChannel(ctx, "dm-alice")
	if !strings.Contains(reply, "1") {
		t.Fatalf("reply = %q, want one deletion reported", reply)
	}
	remaining := gw.Messages("dm-alice")
	if len(remaining) != 1 || remaining[0].AuthorID != "alice" {
		t.Fatalf("remaining = %v, want only alice's message", remaining)
	}
}
