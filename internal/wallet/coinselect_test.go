package wallet

import (
	"errors"
	"testing"

	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/types"
)

func selLock() types.Script {
	var addr types.Address
	addr[0] = 9
	return addr.LockScript()
}

func plain(seed byte, capacity uint64) types.LiveCell {
	return types.LiveCell{
		Cell:     types.Cell{Capacity: capacity, Lock: selLock()},
		Outpoint: types.Outpoint{TxID: crypto.Hash([]byte{seed})},
	}
}

func typed(seed byte, capacity uint64) types.LiveCell {
	typ := types.Script{Template: types.TemplateFungibleToken, Args: crypto.Hash([]byte{seed}).Bytes()}
	c := plain(seed, capacity)
	c.Type = &typ
	return c
}

func TestSelectCellsSmallestSingle(t *testing.T) {
	cells := []types.LiveCell{plain(1, 100), plain(2, 250), plain(3, 900)}

	sel, err := SelectCells(cells, 200)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// 250 covers with change 50; accumulation (900) would leave 700.
	if len(sel.Cells) != 1 || sel.Cells[0].Capacity != 250 {
		t.Fatalf("selected %+v", sel.Cells)
	}
	if sel.Change != 50 {
		t.Fatalf("change = %d", sel.Change)
	}
}

func TestSelectCellsAccumulates(t *testing.T) {
	cells := []types.LiveCell{plain(1, 100), plain(2, 150), plain(3, 200)}

	sel, err := SelectCells(cells, 400)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Total < 400 {
		t.Fatalf("total = %d", sel.Total)
	}
	if sel.Change != sel.Total-400 {
		t.Fatalf("change = %d, total = %d", sel.Change, sel.Total)
	}
	if len(sel.Cells) < 2 {
		t.Fatalf("expected accumulation, got %d cells", len(sel.Cells))
	}
}

func TestSelectCellsNeverPicksTokenCells(t *testing.T) {
	cells := []types.LiveCell{typed(1, 10_000), plain(2, 500)}

	sel, err := SelectCells(cells, 400)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, c := range sel.Cells {
		if c.Type != nil {
			t.Fatal("token cells must never fund plain capacity")
		}
	}
}

func TestSelectCellsInsufficient(t *testing.T) {
	_, err := SelectCells([]types.LiveCell{plain(1, 10), plain(2, 20)}, 1000)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
}

func TestSelectCellsEmpty(t *testing.T) {
	if _, err := SelectCells(nil, 100); !errors.Is(err, ErrNoCells) {
		t.Fatalf("err = %v", err)
	}
	// Only token cells is as good as empty.
	if _, err := SelectCells([]types.LiveCell{typed(1, 500)}, 100); !errors.Is(err, ErrNoCells) {
		t.Fatalf("err = %v", err)
	}
}

func TestSelectCellsZeroTarget(t *testing.T) {
	if _, err := SelectCells([]types.LiveCell{plain(1, 100)}, 0); err == nil {
		t.Fatal("zero target must be rejected")
	}
}
