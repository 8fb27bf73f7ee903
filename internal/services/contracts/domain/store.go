package domain

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Sasabodun/kontraktbot/internal/services/contracts/gateway"
)

var (
	// ErrDuplicateContract indicates the contract identity is already taken.
	ErrDuplicateContract = errors.New("contract already exists")
	// ErrCreatorActive indicates the creator already owns an open contract.
	ErrCreatorActive = errors.New("creator already has an active contract")
	// ErrNotFound indicates no contract exists under the given identity.
	ErrNotFound = errors.New("contract not found")
	// ErrContractClosed indicates the contract already left the open state.
	ErrContractClosed = errors.New("contract already closed")
	// ErrNoActiveContract indicates the user owns no open contract.
	ErrNoActiveContract = errors.New("no active contract for user")
)

// Store holds every live contract and the archive of finished ones. It is the
// single owner of the id→contract, creator→id, and archive maps; the maps are
// never exposed and every operation that spans them runs under one lock so the
// one-open-contract-per-creator invariant cannot be observed broken.
type Store struct {
	mu        sync.Mutex
	active    map[string]*Contract
	byCreator map[string]string
	archived  map[string]ArchiveRecord
	clock     func() time.Time
}

// NewStore creates an empty contract store. A nil clock defaults to time.Now.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		active:    make(map[string]*Contract),
		byCreator: make(map[string]string),
		archived:  make(map[string]ArchiveRecord),
		clock:     clock,
	}
}

// Create inserts a new open contract with the creator as its first
// participant and returns a snapshot of it.
func (s *Store) Create(id, creator string) (Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[id]; exists {
		return Contract{}, ErrDuplicateContract
	}
	if _, exists := s.byCreator[creator]; exists {
		return Contract{}, ErrCreatorActive
	}

	contract := &Contract{
		ID:           id,
		Creator:      creator,
		Participants: []string{creator},
		State:        StateOpen,
		CreatedAt:    s.clock(),
	}
	s.active[id] = contract
	s.byCreator[creator] = id
	return contract.snapshot(), nil
}

// Get returns a snapshot of the contract, if present.
func (s *Store) Get(id string) (Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if !ok {
		return Contract{}, false
	}
	return contract.snapshot(), true
}

// ByCreator returns a snapshot of the creator's contract, if any.
func (s *Store) ByCreator(creator string) (Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCreator[creator]
	if !ok {
		return Contract{}, false
	}
	contract, ok := s.active[id]
	if !ok {
		return Contract{}, false
	}
	return contract.snapshot(), true
}

// SetPrimaryMessage records the posted roster message on an open contract.
// The reference is set once; later roster updates edit the same message. A
// contract that closed while the post was in flight returns ErrContractClosed
// so the caller can take the message back down instead of recording a ref the
// closure sequence never saw.
func (s *Store) SetPrimaryMessage(id string, ref gateway.MessageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if !ok {
		return ErrNotFound
	}
	if contract.State != StateOpen {
		return ErrContractClosed
	}
	contract.PrimaryMessage = ref
	return nil
}

// SetReminder records a posted reminder message for the given slot.
func (s *Store) SetReminder(id string, slot ReminderSlot, ref gateway.MessageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if !ok {
		return ErrNotFound
	}
	if contract.State != StateOpen {
		return ErrContractClosed
	}
	contract.Reminders[slot] = ref
	return nil
}

// AddParticipant appends the user to an open contract's roster. It returns
// the updated snapshot and whether the roster changed; an already-joined user
// is a no-op with added == false. Joining a contract that already closed
// returns ErrContractClosed.
func (s *Store) AddParticipant(id, userID string) (Contract, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if !ok {
		return Contract{}, false, ErrNotFound
	}
	if contract.State != StateOpen {
		return Contract{}, false, ErrContractClosed
	}
	if contract.HasParticipant(userID) {
		return contract.snapshot(), false, nil
	}
	contract.Participants = append(contract.Participants, userID)
	return contract.snapshot(), true, nil
}

// Close transitions the contract from open to closed and frees the creator to
// open a new one. The returned snapshot carries the final roster for closure
// notifications. A second close returns ErrContractClosed so racing callers
// (expiry timer vs force-close) collapse to exactly one closure sequence.
func (s *Store) Close(id string) (Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if !ok {
		return Contract{}, ErrNotFound
	}
	if contract.State != StateOpen {
		return Contract{}, ErrContractClosed
	}
	contract.State = StateClosed
	delete(s.byCreator, contract.Creator)
	return contract.snapshot(), nil
}

// Discard removes an open contract from both active maps without any closure
// bookkeeping. It backs creator cancellation and creation rollback. A contract
// that already transitioned to closed returns ErrContractClosed; its messages
// belong to the closure sequence and must not be pulled out from under it.
func (s *Store) Discard(id string) (Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if !ok {
		return Contract{}, ErrNotFound
	}
	if contract.State != StateOpen {
		return Contract{}, ErrContractClosed
	}
	delete(s.active, id)
	if s.byCreator[contract.Creator] == id {
		delete(s.byCreator, contract.Creator)
	}
	return contract.snapshot(), nil
}

// Archive moves a closed contract out of the active map, retaining only the
// roster message reference for the reaper.
func (s *Store) Archive(id string, ref gateway.MessageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.active[id]
	if ok {
		delete(s.active, id)
		if s.byCreator[contract.Creator] == id {
			delete(s.byCreator, contract.Creator)
		}
	}
	s.archived[id] = ArchiveRecord{
		ContractID: id,
		Message:    ref,
		ArchivedAt: s.clock(),
	}
}

// ArchivedBefore returns a snapshot of archive records older than cutoff, so
// the reaper never iterates the live map while purging.
func (s *Store) ArchivedBefore(cutoff time.Time) []ArchiveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ArchiveRecord
	for _, record := range s.archived {
		if record.ArchivedAt.Before(cutoff) {
			out = append(out, record)
		}
	}
	return out
}

// Purge drops an archive record. Absent records are a no-op.
func (s *Store) Purge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.archived, id)
}

// OpenContracts returns snapshots of every open contract, oldest first.
func (s *Store) OpenContracts() []Contract {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Contract
	for _, contract := range s.active {
		if contract.State == StateOpen {
			out = append(out, contract.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
