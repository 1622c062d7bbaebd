package ledger

import (
	"context"
	"fmt"

	"github.com/cellforge/cellforge/internal/wallet"
	"github.com/cellforge/cellforge/pkg/tx"
	"github.com/cellforge/cellforge/pkg/types"
)

// Assembler completes transaction drafts on top of any Client: it finds
// capacity inputs for the declared outputs, adds change, and carves the fee
// out of the change output.
type Assembler struct {
	client Client
}

// NewAssembler creates an assembler over the given client.
func NewAssembler(client Client) *Assembler {
	return &Assembler{client: client}
}

// BuildTransaction starts a draft from the declared outputs.
func (a *Assembler) BuildTransaction(outputs ...types.Cell) *tx.Draft {
	return tx.NewDraft(outputs...)
}

// CompleteInputsByCapacity adds live cells owned by the given lock until
// the draft's inputs cover `required` base units beyond what explicit
// inputs already provide, plus `allowance` for the eventual fee. The entire
// surplus over `required` goes into a change output back to the lock, so
// capacity is conserved: after CompleteFee, inputs equal outputs plus the
// sized fee and nothing else. `allowance` must be an upper bound on that
// fee (tx.EstimateFee). Outpoints marked unusable in the local cache are
// never offered, nor are outpoints already present in the draft.
func (a *Assembler) CompleteInputsByCapacity(ctx context.Context, d *tx.Draft, lock types.Script, required, allowance uint64) error {
	need := required + allowance
	if need == 0 {
		return nil
	}

	cells, err := a.client.QueryLiveCells(ctx, lock, nil)
	if err != nil {
		return fmt.Errorf("query live cells: %w", err)
	}

	inDraft := make(map[types.Outpoint]struct{}, d.NumInputs())
	for _, op := range d.Build().InputOutpoints() {
		inDraft[op] = struct{}{}
	}

	candidates := cells[:0]
	for _, c := range cells {
		if _, dup := inDraft[c.Outpoint]; dup {
			continue
		}
		if !a.client.OutpointUsable(c.Outpoint) {
			continue
		}
		candidates = append(candidates, c)
	}

	target := need
	for attempt := 0; attempt < 2; attempt++ {
		sel, err := wallet.SelectCells(candidates, target)
		if err != nil {
			return err
		}
		surplus := sel.Total - required

		// An exact match carries the allowance as the fee and needs no
		// change output. Only valid when the draft has no change yet:
		// otherwise CompleteFee would deduct the fee a second time there.
		if surplus == allowance && !d.HasChange() {
			for _, c := range sel.Cells {
				d.AddInput(c.Outpoint)
			}
			return nil
		}
		// Otherwise the change must survive the fee deduction and still be
		// a valid cell. Retarget once with headroom for both.
		if surplus < allowance+types.MinCellCapacity && attempt == 0 {
			target = required + allowance + types.MinCellCapacity
			continue
		}
		if surplus < allowance+types.MinCellCapacity {
			break
		}
		for _, c := range sel.Cells {
			d.AddInput(c.Outpoint)
		}
		d.AddChange(surplus, lock)
		return nil
	}
	return fmt.Errorf("insufficient funds: cannot form a valid change output")
}

// CompleteFee sizes the draft and deducts the exact fee from its change
// output. A draft without a change output was funded by an exact-match
// selection whose allowance already covers the fee implicitly; nothing is
// deducted for it.
func (a *Assembler) CompleteFee(d *tx.Draft, feeRate uint64) (uint64, error) {
	fee := tx.RequiredFee(d.Build(), feeRate)
	if !d.HasChange() {
		return fee, nil
	}
	if err := d.DeductChange(fee); err != nil {
		return 0, fmt.Errorf("insufficient capacity for fee %d: %w", fee, err)
	}
	return fee, nil
}
