// Package lifecycle tracks the transactions a session produces and the
// live/consumed status of the outpoints they create.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/cellforge/cellforge/pkg/types"
)

// Role names the step a transaction belongs to.
type Role string

const (
	RoleFee  Role = "fee"
	RoleSeal Role = "seal"
	RoleLock Role = "lock"
	RoleMint Role = "mint"
	RoleTip  Role = "tip"
)

// TransactionReference is one step's submitted transaction. Confirmed flips
// to true once; after that the reference is immutable except for explicit
// invalidation when its outpoint is consumed by a later step.
type TransactionReference struct {
	Hash        types.Hash `json:"hash"`
	Role        Role       `json:"role"`
	Confirmed   bool       `json:"confirmed"`
	OutputIndex uint32     `json:"output_index"`
	Invalidated bool       `json:"invalidated"`
}

// Outpoint returns the outpoint of the step's tracked output.
func (r TransactionReference) Outpoint() types.Outpoint {
	return types.Outpoint{TxID: r.Hash, Index: r.OutputIndex}
}

// Tracker records one session's transaction references by role.
type Tracker struct {
	mu    sync.Mutex
	refs  map[Role]*TransactionReference
	order []Role
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{refs: make(map[Role]*TransactionReference)}
}

// Record registers a step's submitted transaction. Each role may be
// recorded once per session.
func (t *Tracker) Record(role Role, hash types.Hash, outputIndex uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.refs[role]; exists {
		return fmt.Errorf("step %s already has a transaction recorded", role)
	}
	t.refs[role] = &TransactionReference{
		Hash:        hash,
		Role:        role,
		OutputIndex: outputIndex,
	}
	t.order = append(t.order, role)
	return nil
}

// MarkConfirmed flips the reference to confirmed after the ledger reported
// inclusion. Idempotent.
func (t *Tracker) MarkConfirmed(role Role) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[role]
	if !ok {
		return fmt.Errorf("step %s has no recorded transaction", role)
	}
	ref.Confirmed = true
	return nil
}

// Invalidate marks a reference's tracked output as consumed, so cached
// copies of it are never offered again.
func (t *Tracker) Invalidate(role Role) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[role]
	if !ok {
		return fmt.Errorf("step %s has no recorded transaction", role)
	}
	ref.Invalidated = true
	return nil
}

// Get returns a copy of the reference for a role.
func (t *Tracker) Get(role Role) (TransactionReference, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[role]
	if !ok {
		return TransactionReference{}, false
	}
	return *ref, true
}

// ConfirmedOutpoint returns the outpoint of a role's tracked output,
// failing if the step has not been recorded and confirmed. The lock step
// uses this to enforce that it can only be built on a confirmed seal.
func (t *Tracker) ConfirmedOutpoint(role Role) (types.Outpoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[role]
	if !ok {
		return types.Outpoint{}, fmt.Errorf("step %s has no recorded transaction", role)
	}
	if !ref.Confirmed {
		return types.Outpoint{}, fmt.Errorf("step %s is not confirmed yet", role)
	}
	if ref.Invalidated {
		return types.Outpoint{}, fmt.Errorf("step %s output was already consumed", role)
	}
	return ref.Outpoint(), nil
}

// All returns copies of every reference in record order.
func (t *Tracker) All() []TransactionReference {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TransactionReference, 0, len(t.order))
	for _, role := range t.order {
		out = append(out, *t.refs[role])
	}
	return out
}

// Reset clears the tracker for a new session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs = make(map[Role]*TransactionReference)
	t.order = nil
}
