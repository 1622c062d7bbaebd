package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/cellforge/cellforge/internal/ledger"
	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/tx"
	"github.com/cellforge/cellforge/pkg/types"
)

// fakeClient implements only the mandatory Client surface. Optional query
// capabilities are layered on by the wrapper types below, mirroring how
// wallet integrations expose different subsets.
type fakeClient struct {
	aggregate    uint64
	aggregateErr error
	cells        []types.LiveCell
	cellsErr     error
}

func (f *fakeClient) SubmitTransaction(context.Context, *tx.Transaction) (types.Hash, error) {
	return types.Hash{}, errors.New("not supported")
}
func (f *fakeClient) WaitForConfirmation(context.Context, types.Hash) error {
	return errors.New("not supported")
}
func (f *fakeClient) GetTipHeader(context.Context) (ledger.Header, error) {
	return ledger.Header{}, errors.New("not supported")
}
func (f *fakeClient) QueryLiveCells(ctx context.Context, lock types.Script, typ *types.Script) ([]types.LiveCell, error) {
	return f.cells, f.cellsErr
}
func (f *fakeClient) AggregateCapacity(ctx context.Context, lock types.Script) (uint64, error) {
	return f.aggregate, f.aggregateErr
}
func (f *fakeClient) ResolveAddress(addr string) (types.Script, error) {
	return types.Script{}, errors.New("not supported")
}
func (f *fakeClient) DeriveScript(template types.ScriptTemplate, args []byte) (types.Script, error) {
	return types.Script{Template: template, Args: args}, nil
}
func (f *fakeClient) MarkOutpointUnusable(types.Outpoint) {}
func (f *fakeClient) OutpointUsable(types.Outpoint) bool  { return true }

// lockHashClient adds the capacity-by-lock-hash capability.
type lockHashClient struct {
	*fakeClient
	capacity uint64
	err      error
}

func (c *lockHashClient) CapacityByLockHash(context.Context, types.Hash) (uint64, error) {
	return c.capacity, c.err
}

// addressClient adds the balance-by-address capability.
type addressClient struct {
	*fakeClient
	balance uint64
}

func (c *addressClient) BalanceByAddress(context.Context, string) (uint64, error) {
	return c.balance, nil
}

func testLock() types.Script {
	var addr types.Address
	addr[0] = 0x7f
	return addr.LockScript()
}

func plainCell(capacity uint64) types.LiveCell {
	return types.LiveCell{Cell: types.Cell{Capacity: capacity, Lock: testLock()}}
}

func tokenCell(capacity uint64) types.LiveCell {
	typ := types.Script{Template: types.TemplateFungibleToken, Args: crypto.Hash([]byte("t")).Bytes()}
	return types.LiveCell{Cell: types.Cell{Capacity: capacity, Lock: testLock(), Type: &typ}}
}

func TestResolveAggregateWins(t *testing.T) {
	r := NewResolver(&fakeClient{aggregate: 5 * types.UnitsPerCoin})
	if got := r.Resolve(context.Background(), testLock()); got != "5.00000000" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFallsThroughToLockHash(t *testing.T) {
	client := &lockHashClient{
		fakeClient: &fakeClient{aggregateErr: errors.New("method not found")},
		capacity:   3 * types.UnitsPerCoin,
	}
	r := NewResolver(client)
	if got := r.Resolve(context.Background(), testLock()); got != "3.00000000" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFallsThroughToSummingCells(t *testing.T) {
	// No lock-hash capability, aggregate fails: strategy 3 sums live cells.
	client := &fakeClient{
		aggregateErr: errors.New("method not found"),
		cells: []types.LiveCell{
			plainCell(2 * types.UnitsPerCoin),
			plainCell(1 * types.UnitsPerCoin),
		},
	}
	r := NewResolver(client)
	if got := r.Resolve(context.Background(), testLock()); got != "3.00000000" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveSumExcludesTokenCells(t *testing.T) {
	client := &fakeClient{
		aggregateErr: errors.New("down"),
		cells: []types.LiveCell{
			plainCell(2 * types.UnitsPerCoin),
			tokenCell(142 * types.UnitsPerCoin), // not spendable capacity
		},
	}
	r := NewResolver(client)
	if got := r.Resolve(context.Background(), testLock()); got != "2.00000000" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveAddressBalanceLast(t *testing.T) {
	client := &addressClient{
		fakeClient: &fakeClient{
			aggregateErr: errors.New("down"),
			cellsErr:     errors.New("indexer disabled"),
		},
		balance: 7 * types.UnitsPerCoin,
	}
	r := NewResolver(client)
	if got := r.Resolve(context.Background(), testLock()); got != "7.00000000" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveEverythingFailsReturnsZero(t *testing.T) {
	client := &fakeClient{
		aggregateErr: errors.New("down"),
		cellsErr:     errors.New("down"),
	}
	r := NewResolver(client)
	if got := r.Resolve(context.Background(), testLock()); got != "0" {
		t.Fatalf("got %q, want \"0\"", got)
	}
}

func TestResolveZeroResultFallsThrough(t *testing.T) {
	// A successful strategy returning zero is treated like a miss; a later
	// strategy may still find the balance.
	client := &fakeClient{
		aggregate: 0,
		cells:     []types.LiveCell{plainCell(4 * types.UnitsPerCoin)},
	}
	r := NewResolver(client)
	if got := r.Resolve(context.Background(), testLock()); got != "4.00000000" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatCapacity(t *testing.T) {
	cases := map[uint64]string{
		0:                          "0.00000000",
		1:                          "0.00000001",
		types.UnitsPerCoin:         "1.00000000",
		types.UnitsPerCoin*3 + 250: "3.00000250",
	}
	for in, want := range cases {
		if got := FormatCapacity(in); got != want {
			t.Errorf("FormatCapacity(%d) = %q, want %q", in, got, want)
		}
	}
}
