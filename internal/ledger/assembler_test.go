package ledger

import (
	"context"
	"testing"

	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/tx"
	"github.com/cellforge/cellforge/pkg/types"
)

// cellSource is a Client stub serving a fixed live-cell set with a local
// reservation cache.
type cellSource struct {
	cells []types.LiveCell
	cache *OutpointCache
}

func (s *cellSource) SubmitTransaction(context.Context, *tx.Transaction) (types.Hash, error) {
	return types.Hash{}, nil
}
func (s *cellSource) WaitForConfirmation(context.Context, types.Hash) error { return nil }
func (s *cellSource) GetTipHeader(context.Context) (Header, error)          { return Header{}, nil }
func (s *cellSource) QueryLiveCells(ctx context.Context, lock types.Script, typ *types.Script) ([]types.LiveCell, error) {
	out := make([]types.LiveCell, len(s.cells))
	copy(out, s.cells)
	return out, nil
}
func (s *cellSource) AggregateCapacity(context.Context, types.Script) (uint64, error) {
	return 0, nil
}
func (s *cellSource) ResolveAddress(string) (types.Script, error) {
	return types.Script{}, nil
}
func (s *cellSource) DeriveScript(template types.ScriptTemplate, args []byte) (types.Script, error) {
	return types.Script{Template: template, Args: args}, nil
}
func (s *cellSource) MarkOutpointUnusable(op types.Outpoint) { s.cache.MarkUnusable(op) }
func (s *cellSource) OutpointUsable(op types.Outpoint) bool  { return s.cache.Usable(op) }

func liveCell(seed byte, capacity uint64, lock types.Script) types.LiveCell {
	op := types.Outpoint{TxID: crypto.Hash([]byte{seed}), Index: 0}
	return types.LiveCell{
		Cell:     types.Cell{Capacity: capacity, Lock: lock},
		Outpoint: op,
	}
}

func userLock() types.Script {
	var addr types.Address
	addr[0] = 1
	return addr.LockScript()
}

// inputCapacity sums the capacities of the draft's inputs as served by the
// stub's live-cell set.
func inputCapacity(t *testing.T, src *cellSource, d *tx.Draft) uint64 {
	t.Helper()
	byOutpoint := make(map[types.Outpoint]uint64, len(src.cells))
	for _, c := range src.cells {
		byOutpoint[c.Outpoint] = c.Capacity
	}
	var total uint64
	for _, op := range d.Build().InputOutpoints() {
		cap, ok := byOutpoint[op]
		if !ok {
			t.Fatalf("draft spends unknown outpoint %v", op)
		}
		total += cap
	}
	return total
}

func TestCompleteInputsByCapacity(t *testing.T) {
	lock := userLock()
	src := &cellSource{
		cells: []types.LiveCell{liveCell(1, 1000*types.UnitsPerCoin, lock)},
		cache: NewOutpointCache(),
	}
	asm := NewAssembler(src)

	allowance := tx.EstimateFee(4, 2, 0, 1)
	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, allowance); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}

	if d.NumInputs() != 1 {
		t.Fatalf("inputs = %d", d.NumInputs())
	}
	// Declared output plus change back to the funding lock. The change is
	// the full surplus over the declared output; the allowance stays inside
	// it until CompleteFee carves out the real fee.
	if d.NumOutputs() != 2 {
		t.Fatalf("outputs = %d", d.NumOutputs())
	}
	built := d.Build()
	if got := built.Outputs[1].Capacity; got != 900*types.UnitsPerCoin {
		t.Fatalf("change = %d", got)
	}
}

func TestCompleteInputsSkipsReservedOutpoints(t *testing.T) {
	lock := userLock()
	reserved := liveCell(1, 1000*types.UnitsPerCoin, lock)
	free := liveCell(2, 1000*types.UnitsPerCoin, lock)

	src := &cellSource{cells: []types.LiveCell{reserved, free}, cache: NewOutpointCache()}
	src.cache.MarkUnusable(reserved.Outpoint)
	asm := NewAssembler(src)

	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, 0); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}

	for _, op := range d.Build().InputOutpoints() {
		if op == reserved.Outpoint {
			t.Fatal("reserved outpoint must never be offered")
		}
	}
}

func TestCompleteInputsSkipsDraftDuplicates(t *testing.T) {
	lock := userLock()
	funding := liveCell(1, 1000*types.UnitsPerCoin, lock)
	extra := liveCell(2, 1000*types.UnitsPerCoin, lock)

	src := &cellSource{cells: []types.LiveCell{funding, extra}, cache: NewOutpointCache()}
	asm := NewAssembler(src)

	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	d.AddInput(funding.Outpoint) // explicit input, e.g. a consumed anchor
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, 0); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}

	seen := make(map[types.Outpoint]int)
	for _, op := range d.Build().InputOutpoints() {
		seen[op]++
	}
	if seen[funding.Outpoint] != 1 {
		t.Fatalf("outpoint offered %d times", seen[funding.Outpoint])
	}
}

// Capacity must be conserved through completion and fee sizing: before
// CompleteFee the inputs equal the outputs exactly, and afterwards the gap
// is precisely the sized fee. A regression here silently burns capacity
// into implicit fees.
func TestCompleteInputsConservesCapacity(t *testing.T) {
	lock := userLock()
	const feeRate = 1
	allowance := tx.EstimateFee(4, 2, 0, feeRate)

	// The small cell forces the dust retarget: its surplus over the
	// declared output could not survive the fee and stay a valid cell.
	src := &cellSource{
		cells: []types.LiveCell{
			liveCell(1, 100*types.UnitsPerCoin+allowance+types.MinCellCapacity/2, lock),
			liveCell(2, 500*types.UnitsPerCoin, lock),
		},
		cache: NewOutpointCache(),
	}
	asm := NewAssembler(src)

	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, allowance); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}

	in := inputCapacity(t, src, d)
	if out := d.Build().TotalOutputCapacity(); out != in {
		t.Fatalf("before fee: inputs %d, outputs %d, %d burned", in, out, in-out)
	}

	fee, err := asm.CompleteFee(d, feeRate)
	if err != nil {
		t.Fatalf("complete fee: %v", err)
	}
	if fee > allowance {
		t.Fatalf("fee %d exceeds its allowance %d", fee, allowance)
	}
	if out := d.Build().TotalOutputCapacity(); out+fee != in {
		t.Fatalf("after fee: inputs %d, outputs %d, fee %d", in, out, fee)
	}

	built := d.Build()
	change := built.Outputs[len(built.Outputs)-1].Capacity
	if change < types.MinCellCapacity {
		t.Fatalf("change %d is below the minimum cell capacity", change)
	}
}

// An exact-match selection leaves no room for a change output. The draft
// must still complete: the allowance rides along as the implicit fee and
// CompleteFee accepts the change-less draft as is.
func TestCompleteInputsExactMatchNeedsNoChange(t *testing.T) {
	lock := userLock()
	const feeRate = 1
	allowance := tx.EstimateFee(4, 2, 0, feeRate)

	src := &cellSource{
		cells: []types.LiveCell{liveCell(1, 100*types.UnitsPerCoin+allowance, lock)},
		cache: NewOutpointCache(),
	}
	asm := NewAssembler(src)

	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, allowance); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}
	if d.HasChange() {
		t.Fatal("exact-match selection must not add a change output")
	}
	if d.NumOutputs() != 1 {
		t.Fatalf("outputs = %d", d.NumOutputs())
	}

	fee, err := asm.CompleteFee(d, feeRate)
	if err != nil {
		t.Fatalf("complete fee on an exactly funded draft: %v", err)
	}
	if fee == 0 {
		t.Fatal("fee must be positive at a positive fee rate")
	}
	if fee > allowance {
		t.Fatalf("fee %d exceeds the implicit allowance %d", fee, allowance)
	}
	if got := d.Build().TotalOutputCapacity(); got != 100*types.UnitsPerCoin {
		t.Fatalf("declared output disturbed: %d", got)
	}
}

func TestCompleteInputsRetargetsDustChange(t *testing.T) {
	lock := userLock()
	allowance := tx.EstimateFee(4, 2, 0, 1)
	// One cell whose surplus would fall between the allowance and a valid
	// change cell.
	cap1 := 100*types.UnitsPerCoin + allowance + types.MinCellCapacity/2
	src := &cellSource{
		cells: []types.LiveCell{
			liveCell(1, cap1, lock),
			liveCell(2, 500*types.UnitsPerCoin, lock),
		},
		cache: NewOutpointCache(),
	}
	asm := NewAssembler(src)

	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, allowance); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}

	built := d.Build()
	change := built.Outputs[len(built.Outputs)-1].Capacity
	if change > 0 && change < allowance+types.MinCellCapacity {
		t.Fatalf("change %d cannot cover the fee and stay a valid cell", change)
	}
}

func TestCompleteFeeDeductsFromChange(t *testing.T) {
	lock := userLock()
	src := &cellSource{
		cells: []types.LiveCell{liveCell(1, 1000*types.UnitsPerCoin, lock)},
		cache: NewOutpointCache(),
	}
	asm := NewAssembler(src)

	allowance := tx.EstimateFee(4, 2, 0, 1)
	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: lock})
	if err := asm.CompleteInputsByCapacity(context.Background(), d, lock, 100*types.UnitsPerCoin, allowance); err != nil {
		t.Fatalf("complete inputs: %v", err)
	}

	before := d.Build().TotalOutputCapacity()
	fee, err := asm.CompleteFee(d, 1)
	if err != nil {
		t.Fatalf("complete fee: %v", err)
	}
	if fee == 0 {
		t.Fatal("fee must be positive at a positive fee rate")
	}
	if after := d.Build().TotalOutputCapacity(); after != before-fee {
		t.Fatalf("outputs after fee = %d, want %d", after, before-fee)
	}
}

func TestCompleteFeeFailsOnTinyChange(t *testing.T) {
	asm := NewAssembler(&cellSource{cache: NewOutpointCache()})
	d := asm.BuildTransaction(types.Cell{Capacity: 100 * types.UnitsPerCoin, Lock: userLock()})
	d.AddChange(1, userLock())

	if _, err := asm.CompleteFee(d, 1); err == nil {
		t.Fatal("a change output smaller than the fee must fail the deduction")
	}
}
