// Package faults defines the closed failure taxonomy for the issuance
// workflow and a best-effort classifier over raw errors.
package faults

import "fmt"

// Kind is the closed set of failure categories.
type Kind string

const (
	Validation                  Kind = "validation"
	Network                     Kind = "network"
	Timeout                     Kind = "timeout"
	WalletConnection            Kind = "wallet_connection"
	WalletSignatureRejected     Kind = "wallet_signature_rejected"
	InsufficientFunds           Kind = "insufficient_funds"
	TransactionLockConflict     Kind = "transaction_lock_conflict"
	TransactionRejectedByLedger Kind = "transaction_rejected"
	TokenCreationFailure        Kind = "token_creation_failure"
	TokenTransferFailure        Kind = "token_transfer_failure"
	Internal                    Kind = "internal"
	Unknown                     Kind = "unknown"
)

// Fatal reports whether a failure of this kind ends the session. Tip-step
// callers downgrade their failures to TokenTransferFailure, which is the
// only step-level kind the orchestrator continues past.
func (k Kind) Fatal() bool {
	switch k {
	case TokenTransferFailure, Validation, TransactionLockConflict:
		return false
	default:
		return true
	}
}

// suggestions maps each kind to its default user-facing remediation.
var suggestions = map[Kind]string{
	Validation:                  "correct the highlighted fields and try again",
	Network:                     "check your connection to the node and try again",
	Timeout:                     "the node did not answer in time; try again later",
	WalletConnection:            "reconnect your wallet and start over",
	WalletSignatureRejected:     "approve the signature request in your wallet to continue",
	InsufficientFunds:           "add funds to your wallet and retry",
	TransactionLockConflict:     "another issuance is already running in this session; wait for it to finish",
	TransactionRejectedByLedger: "the ledger rejected the transaction; inspect the details and try again",
	TokenCreationFailure:        "the token could not be created; your platform fee is not refundable",
	TokenTransferFailure:        "the token was created, but the follow-up transfer failed; you can retry it independently",
	Internal:                    "this looks like a bug; please report it with the technical details",
	Unknown:                     "an unexpected error occurred; try again or report it",
}

// Suggestion returns the default remediation text for a kind.
func (k Kind) Suggestion() string {
	if s, ok := suggestions[k]; ok {
		return s
	}
	return suggestions[Unknown]
}

// Fault is a classified failure: a short user-facing message, a remediation
// suggestion, and the raw cause kept separately for diagnostics.
type Fault struct {
	Kind       Kind
	Message    string
	Suggestion string
	Cause      error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap exposes the raw cause to errors.Is/As.
func (f *Fault) Unwrap() error {
	return f.Cause
}

// New creates a Fault of the given kind with the default suggestion.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message, Suggestion: kind.Suggestion()}
}

// Newf creates a Fault with a formatted message.
func Newf(kind Kind, format string, args ...any) *Fault {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches a kind and message to a raw cause.
func Wrap(kind Kind, cause error, message string) *Fault {
	return &Fault{Kind: kind, Message: message, Suggestion: kind.Suggestion(), Cause: cause}
}
