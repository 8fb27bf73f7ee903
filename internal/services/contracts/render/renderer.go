// Package render produces localized user-facing copy for contract lifecycle
// messages and command replies.
package render

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Sasabodun/kontraktbot/internal/services/contracts/domain"
)

const defaultRoleMention = "@here"

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Renderer renders roster, reminder, closure, and reply copy in one locale.
type Renderer struct {
	loc         Localizer
	roleMention string
}

// NewRenderer creates a renderer for the given locale. roleMention is the
// group ping inserted into urgency messages; empty falls back to @here.
func NewRenderer(tag language.Tag, roleMention string) *Renderer {
	if strings.TrimSpace(roleMention) == "" {
		roleMention = defaultRoleMention
	}
	return &Renderer{
		loc:         message.NewPrinter(tag),
		roleMention: roleMention,
	}
}

// ParseLocale resolves a configured locale string to a supported tag,
// defaulting to Russian, the bot's home locale.
func ParseLocale(locale string) language.Tag {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en", "en-us":
		return language.English
	default:
		return language.Russian
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func mentionList(userIDs []string) string {
	parts := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		parts = append(parts, mention(id))
	}
	return strings.Join(parts, "\n")
}

// Roster renders the live recruitment message.
func (r *Renderer) Roster(contract domain.Contract, remaining time.Duration) string {
	var b strings.Builder
	b.WriteString(r.loc.Sprintf("contract.roster.header"))
	b.WriteString("\n")
	b.WriteString(r.loc.Sprintf("contract.roster.open"))
	b.WriteString("\n\n")
	b.WriteString(r.loc.Sprintf("contract.roster.author", mention(contract.Creator)))
	b.WriteString("\n\n")
	if len(contract.Participants) > 0 {
		b.WriteString(r.loc.Sprintf("contract.roster.signed_up", len(contract.Participants)))
		b.WriteString("\n")
		b.WriteString(mentionList(contract.Participants))
	} else {
		b.WriteString(r.loc.Sprintf("contract.roster.empty"))
	}
	b.WriteString("\n\n")
	b.WriteString(r.countdown(remaining))
	return b.String()
}

func (r *Renderer) countdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	total := int(remaining.Round(time.Second) / time.Second)
	minutes := total / 60
	seconds := total % 60
	if minutes > 0 {
		return r.loc.Sprintf("contract.roster.closes_min", minutes, seconds)
	}
	return r.loc.Sprintf("contract.roster.closes_sec", seconds)
}

// Reminder renders one pre-expiry warning.
func (r *Renderer) Reminder(slot domain.ReminderSlot) string {
	if slot == domain.ReminderTwoMinutes {
		return r.loc.Sprintf("contract.reminder.two", r.roleMention)
	}
	return r.loc.Sprintf("contract.reminder.five", r.roleMention)
}

// ContractStarted renders the final roster message for a filled contract.
func (r *Renderer) ContractStarted(contract domain.Contract) string {
	return r.loc.Sprintf("contract.closed.started",
		mention(contract.Creator), mentionList(contract.Participants))
}

// ContractCancelled renders the final roster message when nobody signed up.
func (r *Renderer) ContractCancelled(domain.Contract) string {
	return r.loc.Sprintf("contract.closed.empty")
}

// CreatorClosureNotice renders the direct message sent to the creator. A
// roster nobody joined besides the creator reads as having no team.
func (r *Renderer) CreatorClosureNotice(contract domain.Contract) string {
	roster := r.loc.Sprintf("contract.closed.no_team")
	if len(contract.Recruits()) > 0 {
		roster = mentionList(contract.Participants)
	}
	return r.loc.Sprintf("contract.closed.dm", roster)
}

// ClosureAnnouncement renders the delayed channel-wide closure notice.
func (r *Renderer) ClosureAnnouncement() string {
	return r.loc.Sprintf("contract.closed.announcement", r.roleMention)
}

// Reply renders one command reply by key.
func (r *Renderer) Reply(key string, args ...any) string {
	return r.loc.Sprintf(key, args...)
}

// ListContracts renders the read-only overview of open contracts.
func (r *Renderer) ListContracts(summaries []domain.Summary) string {
	if len(summaries) == 0 {
		return r.loc.Sprintf("contract.list.empty")
	}
	var b strings.Builder
	b.WriteString(r.loc.Sprintf("contract.list.header"))
	for _, summary := range summaries {
		minutes := int(summary.Remaining / time.Minute)
		b.WriteString("\n")
		b.WriteString(r.loc.Sprintf("contract.list.entry",
			mention(summary.Creator), summary.Participants, minutes))
	}
	return b.String()
}

// CleanupResult renders the direct-channel cleanup summary.
func (r *Renderer) CleanupResult(deleted, failed int) string {
	result := r.loc.Sprintf("cleanup.result.deleted", deleted)
	if failed > 0 {
		result += "\n" + r.loc.Sprintf("cleanup.result.errors", failed)
	}
	return result
}
