// Package ledger defines the capability interface the issuance workflow
// consumes, and its JSON-RPC adapter. The workflow never talks to a node
// SDK directly; every integration implements Client (plus whichever
// optional capabilities it supports) instead of being duck-typed at call
// sites.
package ledger

import (
	"context"

	"github.com/cellforge/cellforge/pkg/tx"
	"github.com/cellforge/cellforge/pkg/types"
)

// Header is the subset of a block header the client needs.
type Header struct {
	Height uint64     `json:"height"`
	Hash   types.Hash `json:"hash"`
}

// Client is the narrow capability interface over an underlying node
// integration.
type Client interface {
	// SubmitTransaction broadcasts a signed transaction and returns its hash.
	SubmitTransaction(ctx context.Context, t *tx.Transaction) (types.Hash, error)

	// WaitForConfirmation blocks until the transaction is included, the
	// node reports it rejected, or ctx ends.
	WaitForConfirmation(ctx context.Context, hash types.Hash) error

	// GetTipHeader returns the current chain tip.
	GetTipHeader(ctx context.Context) (Header, error)

	// QueryLiveCells lists unspent cells under a lock script, optionally
	// filtered by type script.
	QueryLiveCells(ctx context.Context, lock types.Script, typ *types.Script) ([]types.LiveCell, error)

	// AggregateCapacity returns the summed spendable capacity under a lock
	// script, computed node-side.
	AggregateCapacity(ctx context.Context, lock types.Script) (uint64, error)

	// ResolveAddress converts an address string into its lock script.
	ResolveAddress(addr string) (types.Script, error)

	// DeriveScript instantiates a well-known script template with args.
	DeriveScript(template types.ScriptTemplate, args []byte) (types.Script, error)

	// MarkOutpointUnusable records a local cache hint that an outpoint must
	// not be offered for spending again. It has no on-chain effect.
	MarkOutpointUnusable(op types.Outpoint)

	// OutpointUsable reports whether an outpoint is still offered locally.
	OutpointUsable(op types.Outpoint) bool
}

// Optional capabilities. Integrations expose whichever subset their wallet
// provider supports; the balance resolver asserts for them at runtime and
// falls through when absent.

// LockHashCapacityQuerier resolves capacity by the hash of a lock script.
type LockHashCapacityQuerier interface {
	CapacityByLockHash(ctx context.Context, lockHash types.Hash) (uint64, error)
}

// AlternateCollector enumerates live cells through a secondary collection
// path (older nodes expose it when the primary indexer is disabled).
type AlternateCollector interface {
	CollectLiveCells(ctx context.Context, lock types.Script) ([]types.LiveCell, error)
}

// AddressBalanceQuerier resolves a balance directly from an address string.
type AddressBalanceQuerier interface {
	BalanceByAddress(ctx context.Context, addr string) (uint64, error)
}
