package wallet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cellforge/cellforge/pkg/types"
)

// Coin selection errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoCells           = errors.New("no live cells available")
)

// Selection holds the result of coin selection.
type Selection struct {
	Cells  []types.LiveCell // Selected cells to spend.
	Total  uint64           // Sum of selected cell capacities.
	Change uint64           // Change = Total - target.
}

// SelectCells chooses plain capacity cells to fund a transaction of the
// given target. Token-carrying cells (those with a type script) are never
// selected for plain capacity. Two strategies are tried:
//  1. Single cell: the smallest single cell that covers the target.
//  2. Largest-first accumulation until the target is met.
//
// The strategy producing the least change wins.
func SelectCells(cells []types.LiveCell, target uint64) (*Selection, error) {
	if len(cells) == 0 {
		return nil, ErrNoCells
	}
	if target == 0 {
		return nil, fmt.Errorf("target must be positive")
	}

	candidates := make([]types.LiveCell, 0, len(cells))
	for _, c := range cells {
		if c.Capacity > 0 && c.Type == nil {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCells
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Capacity < candidates[j].Capacity
	})

	// Strategy 1: smallest single cell that covers the target.
	var single *Selection
	for _, c := range candidates {
		if c.Capacity >= target {
			single = &Selection{
				Cells:  []types.LiveCell{c},
				Total:  c.Capacity,
				Change: c.Capacity - target,
			}
			break // Sorted ascending, first match is smallest.
		}
	}

	// Strategy 2: largest-first accumulation.
	var accum *Selection
	var selected []types.LiveCell
	var total uint64
	for i := len(candidates) - 1; i >= 0; i-- {
		selected = append(selected, candidates[i])
		total += candidates[i].Capacity
		if total >= target {
			accum = &Selection{
				Cells:  selected,
				Total:  total,
				Change: total - target,
			}
			break
		}
	}

	switch {
	case single != nil && accum != nil:
		if single.Change <= accum.Change {
			return single, nil
		}
		return accum, nil
	case single != nil:
		return single, nil
	case accum != nil:
		return accum, nil
	default:
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, target)
	}
}
