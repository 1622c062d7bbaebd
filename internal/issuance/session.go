// Package issuance implements the multi-step token issuance workflow: a
// mandatory platform fee, a seal cell, a single-use lock cell derived from
// the seal's outpoint, the mint consuming both, and an optional creator
// tip. Steps are strictly sequential — each step's output is the next
// step's input — and nothing is ever resubmitted automatically.
package issuance

import (
	"math/big"
	"sync"

	"github.com/cellforge/cellforge/internal/faults"
	"github.com/cellforge/cellforge/internal/lifecycle"
	"github.com/cellforge/cellforge/pkg/types"
	"github.com/google/uuid"
)

// State is the session's position in the issuance state machine.
type State string

const (
	StateIdle          State = "idle"
	StateFeePending    State = "fee_pending"
	StateFeeConfirmed  State = "fee_confirmed"
	StateSealPending   State = "seal_pending"
	StateSealConfirmed State = "seal_confirmed"
	StateLockPending   State = "lock_pending"
	StateLockConfirmed State = "lock_confirmed"
	StateMintPending   State = "mint_pending"
	StateMintConfirmed State = "mint_confirmed"
	StateTipPending    State = "tip_pending"
	StateTipConfirmed  State = "tip_confirmed"
	StateTipFailed     State = "tip_failed"
	StateComplete      State = "complete"
	StateAborted       State = "aborted"
)

// Terminal reports whether the state machine can leave this state.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateAborted
}

// Params are the user-supplied issuance parameters.
type Params struct {
	Name          string // display name, may be empty (defaults to symbol)
	Symbol        string // normalized to uppercase at input time
	Amount        string // decimal string, e.g. "1000" or "0.5"
	Decimals      uint8
	TipEnabled    bool
	TipPercentage uint8 // percent in [1,25], only read when TipEnabled
	Network       string
}

// Session is one run of the issuance workflow. It is owned exclusively by
// the orchestrator from start until a terminal state; the UI collaborator
// only reads its status stream and final snapshot.
type Session struct {
	ID     string
	Params Params

	mu        sync.Mutex
	state     State
	baseUnits *big.Int // amount × 10^decimals, set during validation
	tokenID   types.TokenID
	refs      *lifecycle.Tracker
	errs      []*faults.Fault
	stream    *Stream
}

func newSession(params Params, stream *Stream) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Params: params,
		state:  StateIdle,
		refs:   lifecycle.NewTracker(),
		stream: stream,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setState transitions the machine and emits the structured signal. It is
// a no-op once a terminal state is reached.
func (s *Session) setState(state State, step lifecycle.Role, message string) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.stream.emit(s.ID, step, state, message)
}

// recordFault appends a classified failure to the session's error log.
func (s *Session) recordFault(f *faults.Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, f)
}

// Faults returns a copy of the session's error log.
func (s *Session) Faults() []*faults.Fault {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*faults.Fault, len(s.errs))
	copy(out, s.errs)
	return out
}

// BaseUnits returns the issued amount in base units (nil before
// validation).
func (s *Session) BaseUnits() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseUnits == nil {
		return nil
	}
	return new(big.Int).Set(s.baseUnits)
}

// TokenID returns the minted token's identity (zero before the mint step
// derives it).
func (s *Session) TokenID() types.TokenID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenID
}

// Transactions returns the session's transaction references in step order.
func (s *Session) Transactions() []lifecycle.TransactionReference {
	return s.refs.All()
}

// Events returns the session's status stream so far.
func (s *Session) Events() []Event {
	return s.stream.Events()
}
