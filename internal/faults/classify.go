package faults

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/cellforge/cellforge/internal/log"
)

// pattern maps a lowercase message substring to a kind. Matching is
// deliberately conservative: the list only contains phrases observed from
// the node, the wallet, and the Go net stack. Anything unmatched stays
// Unknown rather than risking a misleading suggestion.
type pattern struct {
	substr string
	kind   Kind
}

var patterns = []pattern{
	{"user rejected", WalletSignatureRejected},
	{"rejected by user", WalletSignatureRejected},
	{"signature rejected", WalletSignatureRejected},
	{"signing denied", WalletSignatureRejected},
	{"insufficient funds", InsufficientFunds},
	{"insufficient capacity", InsufficientFunds},
	{"wallet not connected", WalletConnection},
	{"wallet disconnected", WalletConnection},
	{"no wallet session", WalletConnection},
	{"issuance already in progress", TransactionLockConflict},
	{"transaction lock held", TransactionLockConflict},
	{"deadline exceeded", Timeout},
	{"timed out", Timeout},
	{"timeout", Timeout},
	{"connection refused", Network},
	{"no such host", Network},
	{"network is unreachable", Network},
	{"broken pipe", Network},
	{"rejected by ledger", TransactionRejectedByLedger},
	{"unknown input cell", TransactionRejectedByLedger},
	{"double spend", TransactionRejectedByLedger},
	{"dead cell", TransactionRejectedByLedger},
}

// Classify maps an arbitrary failure to a Fault. An error that already is
// (or wraps) a Fault keeps its kind; otherwise structured errors from the
// stdlib and then message substrings are consulted, in that order.
//
// WalletConnection and TransactionLockConflict classifications are also
// written to the audit log, since both are used for unauthorized-access
// and double-submit detection.
func Classify(err error) *Fault {
	if err == nil {
		return nil
	}

	var f *Fault
	if errors.As(err, &f) {
		audit(f)
		return f
	}

	f = classifyRaw(err)
	audit(f)
	return f
}

func classifyRaw(err error) *Fault {
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(Timeout, err, "operation timed out")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(Network, err, "operation canceled")
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(Timeout, err, "network operation timed out")
		}
		return Wrap(Network, err, "network failure")
	}

	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p.substr) {
			return Wrap(p.kind, err, err.Error())
		}
	}
	return Wrap(Unknown, err, err.Error())
}

func audit(f *Fault) {
	switch f.Kind {
	case WalletConnection, TransactionLockConflict:
		log.Audit.Warn().
			Str("kind", string(f.Kind)).
			Str("message", f.Message).
			Msg("security-relevant failure")
	}
}
