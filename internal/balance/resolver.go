// Package balance resolves a lock script's spendable capacity through an
// ordered chain of strategies. Different wallet/node integrations expose
// different subsets of the query surface, so resolution must degrade
// instead of hard-failing when one path is unsupported.
package balance

import (
	"context"
	"fmt"

	"github.com/cellforge/cellforge/internal/ledger"
	"github.com/cellforge/cellforge/internal/log"
	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/types"
)

// capacityDecimals is the fractional precision of a formatted balance.
const capacityDecimals = 8

// Resolver resolves spendable capacity for lock scripts.
type Resolver struct {
	client ledger.Client
}

// NewResolver creates a resolver over the given ledger client.
func NewResolver(client ledger.Client) *Resolver {
	return &Resolver{client: client}
}

// strategy is one resolution attempt. A result of (0, nil) means "nothing
// found here", which is treated the same as an error: fall through.
type strategy struct {
	name string
	run  func(ctx context.Context, lock types.Script) (uint64, error)
}

// Resolve returns the lock's spendable capacity as a decimal string, or
// "0" when every strategy fails. Strategies run in a fixed order; the
// first non-zero, non-error result wins. Failures are logged and skipped,
// never retried.
func (r *Resolver) Resolve(ctx context.Context, lock types.Script) string {
	for _, s := range r.strategies() {
		capacity, err := s.run(ctx, lock)
		if err != nil {
			log.Balance.Debug().
				Str("strategy", s.name).
				Err(err).
				Msg("balance strategy failed, falling through")
			continue
		}
		if capacity == 0 {
			continue
		}
		return FormatCapacity(capacity)
	}
	return "0"
}

func (r *Resolver) strategies() []strategy {
	return []strategy{
		{"aggregate_rpc", r.byAggregateRPC},
		{"lock_hash", r.byLockHash},
		{"sum_live_cells", r.bySummingLiveCells},
		{"alternate_collector", r.byAlternateCollector},
		{"address_balance", r.byAddress},
	}
}

// 1. Direct node-side aggregate query.
func (r *Resolver) byAggregateRPC(ctx context.Context, lock types.Script) (uint64, error) {
	return r.client.AggregateCapacity(ctx, lock)
}

// 2. Capacity by lock hash, when the integration exposes it.
func (r *Resolver) byLockHash(ctx context.Context, lock types.Script) (uint64, error) {
	q, ok := r.client.(ledger.LockHashCapacityQuerier)
	if !ok {
		return 0, fmt.Errorf("client does not support capacity-by-lock-hash")
	}
	return q.CapacityByLockHash(ctx, crypto.ScriptHash(lock))
}

// 3. Enumerate live cells and sum client-side.
func (r *Resolver) bySummingLiveCells(ctx context.Context, lock types.Script) (uint64, error) {
	cells, err := r.client.QueryLiveCells(ctx, lock, nil)
	if err != nil {
		return 0, err
	}
	return sumCapacity(cells), nil
}

// 4. Enumerate via the alternate collector and sum.
func (r *Resolver) byAlternateCollector(ctx context.Context, lock types.Script) (uint64, error) {
	c, ok := r.client.(ledger.AlternateCollector)
	if !ok {
		return 0, fmt.Errorf("client does not support alternate collection")
	}
	cells, err := c.CollectLiveCells(ctx, lock)
	if err != nil {
		return 0, err
	}
	return sumCapacity(cells), nil
}

// 5. Resolve the lock's address string and query balance by address.
func (r *Resolver) byAddress(ctx context.Context, lock types.Script) (uint64, error) {
	q, ok := r.client.(ledger.AddressBalanceQuerier)
	if !ok {
		return 0, fmt.Errorf("client does not support balance-by-address")
	}
	if lock.Template != types.TemplateSecp256k1Lock || len(lock.Args) != types.AddressSize {
		return 0, fmt.Errorf("lock has no address form")
	}
	var addr types.Address
	copy(addr[:], lock.Args)
	return q.BalanceByAddress(ctx, addr.String())
}

func sumCapacity(cells []types.LiveCell) uint64 {
	var total uint64
	for _, c := range cells {
		if c.Type == nil { // Token cells are not spendable capacity.
			total += c.Capacity
		}
	}
	return total
}

// FormatCapacity renders base units as a decimal coin string with full
// fractional precision.
func FormatCapacity(capacity uint64) string {
	whole := capacity / types.UnitsPerCoin
	frac := capacity % types.UnitsPerCoin
	return fmt.Sprintf("%d.%0*d", whole, capacityDecimals, frac)
}
