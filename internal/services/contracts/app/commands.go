package app

import (
	"context"
	"errors"
	"log"

	kerrors "github.com/Sasabodun/kontraktbot/internal/errors"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/domain"
	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
)

// Command handlers translate lifecycle outcomes into localized replies for
// the invoking user. The transport that routes commands here is out of
// scope; handlers are safe for concurrent use. An empty reply means the
// operation speaks for itself (the roster message is the response).

// failureCode maps a lifecycle or platform failure onto the error taxonomy
// so log lines carry a machine-readable code next to the wrapped cause.
func failureCode(err error) kerrors.Code {
	switch {
	case errors.Is(err, domain.ErrDuplicateContract):
		return kerrors.CodeDuplicateContract
	case errors.Is(err, domain.ErrCreatorActive):
		return kerrors.CodeAlreadyActive
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoActiveContract):
		return kerrors.CodeNotFound
	case errors.Is(err, domain.ErrContractClosed):
		return kerrors.CodeAlreadyClosed
	case errors.Is(err, gateway.ErrForbidden):
		return kerrors.CodeForbidden
	}
	switch gateway.Classify(err) {
	case gateway.OutcomeRateLimited, gateway.OutcomeTransient:
		return kerrors.CodeTransient
	case gateway.OutcomeFatal:
		return kerrors.CodeFatal
	}
	return kerrors.CodeUnknown
}

// CreateContract opens recruitment in the channel for the user.
func (b *Bot) CreateContract(ctx context.Context, channelID, interactionID, userID string) string {
	_, err := b.controller.CreateContract(ctx, channelID, interactionID, userID)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrCreatorActive):
		return b.renderer.Reply("reply.create.active")
	default:
		log.Printf("create contract for %s in %s: %v (code %s)", userID, channelID, err, failureCode(err))
		return b.renderer.Reply("reply.create.failed")
	}
}

// JoinContract signs the user up on the contract's roster.
func (b *Bot) JoinContract(ctx context.Context, contractID, userID string) string {
	result, err := b.controller.Join(ctx, contractID, userID)
	if err != nil {
		log.Printf("join contract %s for %s: %v (code %s)", contractID, userID, err, failureCode(err))
		return b.renderer.Reply("reply.join.closed")
	}
	switch result {
	case domain.JoinAdded:
		return b.renderer.Reply("reply.join.added")
	case domain.JoinAlreadyMember:
		return b.renderer.Reply("reply.join.already")
	default:
		return b.renderer.Reply("reply.join.closed")
	}
}

// CancelContract withdraws the creator's recruitment without notifications.
func (b *Bot) CancelContract(ctx context.Context, userID string) string {
	err := b.controller.Cancel(ctx, userID)
	switch {
	case err == nil:
		return b.renderer.Reply("reply.cancel.done")
	case errors.Is(err, domain.ErrNoActiveContract):
		return b.renderer.Reply("reply.no_contract")
	default:
		log.Printf("cancel contract for %s: %v (code %s)", userID, err, failureCode(err))
		return b.renderer.Reply("reply.no_contract")
	}
}

// ForceCloseContract runs the full closure sequence early.
func (b *Bot) ForceCloseContract(ctx context.Context, userID string) string {
	err := b.controller.ForceClose(ctx, userID)
	switch {
	case err == nil:
		return b.renderer.Reply("reply.close.done")
	case errors.Is(err, domain.ErrNoActiveContract):
		return b.renderer.Reply("reply.no_contract")
	case errors.Is(err, domain.ErrContractClosed):
		// The expiry timer won the race; acknowledge rather than stay silent.
		return b.renderer.Reply("reply.close.already")
	default:
		log.Printf("force close contract for %s: %v (code %s)", userID, err, failureCode(err))
		return b.renderer.Reply("reply.close.already")
	}
}

// ListContracts renders a snapshot of every open recruitment.
func (b *Bot) ListContracts(context.Context) string {
	return b.renderer.ListContracts(b.controller.List())
}

// CleanupPrompt renders the direct-channel cleanup offer.
func (b *Bot) CleanupPrompt() string {
	return b.renderer.Reply("cleanup.prompt")
}

// CleanupDirectChannel deletes bot-authored messages from the direct channel
// and reports how many went away and how many failed.
func (b *Bot) CleanupDirectChannel(ctx context.Context, channelID string) string {
	summary, err := b.dispatcher.CleanupDirectMessages(ctx, channelID)
	if err != nil {
		log.Printf("cleanup direct channel %s: %v (code %s)", channelID, err, failureCode(err))
	}
	return b.renderer.CleanupResult(summary.Deleted, summary.Failed)
}

// CleanupForUser resolves the user's direct channel and cleans it. A privacy
// denial answers with the settings hint instead of a count.
func (b *Bot) CleanupForUser(ctx context.Context, userID string) string {
	channelID, err := b.dispatcher.OpenDirectChannel(ctx, userID)
	if err != nil {
		if !errors.Is(err, gateway.ErrForbidden) {
			log.Printf("open direct channel for %s: %v (code %s)", userID, err, failureCode(err))
		}
		return b.renderer.Reply("cleanup.forbidden")
	}
	return b.CleanupDirectChannel(ctx, channelID)
}
