package faults

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o wait" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifySubstrings(t *testing.T) {
	cases := []struct {
		msg  string
		want Kind
	}{
		{"user rejected the request", WalletSignatureRejected},
		{"signing denied by device", WalletSignatureRejected},
		{"insufficient funds: need 300, have 12", InsufficientFunds},
		{"insufficient capacity for fee 500", InsufficientFunds},
		{"wallet not connected: bad password", WalletConnection},
		{"issuance already in progress for this session", TransactionLockConflict},
		{"request timed out after 30s", Timeout},
		{"dial tcp 127.0.0.1:8114: connection refused", Network},
		{"lookup node.invalid: no such host", Network},
		{"transaction rejected by ledger: bad fee", TransactionRejectedByLedger},
		{"unknown input cell at 0xabc:0", TransactionRejectedByLedger},
		{"double spend detected", TransactionRejectedByLedger},
	}
	for _, c := range cases {
		t.Run(c.msg, func(t *testing.T) {
			f := Classify(errors.New(c.msg))
			if f.Kind != c.want {
				t.Fatalf("kind = %s, want %s", f.Kind, c.want)
			}
			if f.Suggestion == "" {
				t.Fatal("classified fault must carry a suggestion")
			}
		})
	}
}

func TestClassifyUnmatchedIsUnknown(t *testing.T) {
	f := Classify(errors.New("some novel failure nobody has seen"))
	if f.Kind != Unknown {
		t.Fatalf("kind = %s, want %s", f.Kind, Unknown)
	}
	// The conservative classifier must never invent a specific kind.
	if f.Suggestion != Unknown.Suggestion() {
		t.Fatalf("suggestion = %q", f.Suggestion)
	}
}

func TestClassifyStructuredErrors(t *testing.T) {
	if f := Classify(context.DeadlineExceeded); f.Kind != Timeout {
		t.Fatalf("deadline: kind = %s", f.Kind)
	}
	if f := Classify(context.Canceled); f.Kind != Network {
		t.Fatalf("canceled: kind = %s", f.Kind)
	}
	if f := Classify(timeoutErr{}); f.Kind != Timeout {
		t.Fatalf("net timeout: kind = %s", f.Kind)
	}
}

func TestClassifyPreservesWrappedFault(t *testing.T) {
	orig := New(TokenCreationFailure, "mint failed")
	wrapped := fmt.Errorf("step mint: %w", orig)

	f := Classify(wrapped)
	if f != orig {
		t.Fatal("an error wrapping a Fault must keep the original classification")
	}
}

func TestClassifyNil(t *testing.T) {
	if f := Classify(nil); f != nil {
		t.Fatalf("Classify(nil) = %v", f)
	}
}

func TestKindFatal(t *testing.T) {
	nonFatal := []Kind{TokenTransferFailure, Validation, TransactionLockConflict}
	for _, k := range nonFatal {
		if k.Fatal() {
			t.Errorf("%s should be non-fatal", k)
		}
	}
	fatal := []Kind{Network, Timeout, WalletConnection, InsufficientFunds, TokenCreationFailure, Internal, Unknown}
	for _, k := range fatal {
		if !k.Fatal() {
			t.Errorf("%s should be fatal", k)
		}
	}
}

func TestFaultErrorAndUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	f := Wrap(Network, cause, "request failed")

	if !errors.Is(f, cause) {
		t.Fatal("Unwrap must expose the cause")
	}
	if f.Error() == "" || f.Message != "request failed" {
		t.Fatalf("fault = %+v", f)
	}
}
