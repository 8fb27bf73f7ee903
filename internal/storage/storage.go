// Package storage defines the persistence boundaries shared across the bot.
package storage

import (
	"context"
	"time"
)

// AuditEvent is one recorded lifecycle event. Contract state itself lives in
// memory only; the audit log is operational history, not state.
type AuditEvent struct {
	Timestamp  time.Time
	Severity   string
	Kind       string
	ContractID string
	Detail     string
}

// AuditStore appends and reads lifecycle audit events.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, event AuditEvent) error
	ListAuditEvents(ctx context.Context, contractID string, limit int) ([]AuditEvent, error)
}
