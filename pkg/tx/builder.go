package tx

import (
	"fmt"

	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/types"
)

// Draft is a transaction under construction: declared outputs first, then
// inputs and change added by capacity completion, then signatures.
type Draft struct {
	tx *Transaction

	// changeIndex is the output added by AddChange, -1 when absent.
	changeIndex int
}

// NewDraft starts a draft from the declared outputs.
func NewDraft(outputs ...types.Cell) *Draft {
	return &Draft{
		tx:          &Transaction{Version: 1, Outputs: outputs},
		changeIndex: -1,
	}
}

// AddInput appends an input referencing a live cell.
func (d *Draft) AddInput(prevOut types.Outpoint) *Draft {
	d.tx.Inputs = append(d.tx.Inputs, Input{PrevOut: prevOut})
	return d
}

// AddOutput appends an output cell.
func (d *Draft) AddOutput(cell types.Cell) *Draft {
	d.tx.Outputs = append(d.tx.Outputs, cell)
	return d
}

// AddChange appends a change output back to the given lock, or records the
// extra capacity onto the existing change output if one was already added.
func (d *Draft) AddChange(capacity uint64, lock types.Script) *Draft {
	if d.changeIndex >= 0 {
		d.tx.Outputs[d.changeIndex].Capacity += capacity
		return d
	}
	d.changeIndex = len(d.tx.Outputs)
	d.tx.Outputs = append(d.tx.Outputs, types.Cell{Capacity: capacity, Lock: lock})
	return d
}

// HasChange reports whether the draft carries a change output.
func (d *Draft) HasChange() bool {
	return d.changeIndex >= 0
}

// ChangeCapacity returns the change output's current capacity, or 0 when
// there is none.
func (d *Draft) ChangeCapacity() uint64 {
	if d.changeIndex < 0 {
		return 0
	}
	return d.tx.Outputs[d.changeIndex].Capacity
}

// DeductChange lowers the change output's capacity, typically to carve out
// a fee after sizing. Fails if there is no change output or it is too small.
func (d *Draft) DeductChange(amount uint64) error {
	if d.changeIndex < 0 {
		return fmt.Errorf("draft has no change output to deduct from")
	}
	if d.tx.Outputs[d.changeIndex].Capacity < amount {
		return fmt.Errorf("change %d too small to cover %d",
			d.tx.Outputs[d.changeIndex].Capacity, amount)
	}
	d.tx.Outputs[d.changeIndex].Capacity -= amount
	return nil
}

// NumInputs returns the number of inputs added so far.
func (d *Draft) NumInputs() int {
	return len(d.tx.Inputs)
}

// NumOutputs returns the number of outputs, including any change.
func (d *Draft) NumOutputs() int {
	return len(d.tx.Outputs)
}

// Sign signs every input with the provided signer. The ledger model here is
// single-key spending: all of a draft's inputs belong to one wallet session.
func (d *Draft) Sign(signer crypto.Signer) error {
	if len(d.tx.Inputs) == 0 {
		return fmt.Errorf("cannot sign a draft with no inputs")
	}
	hash := d.tx.Hash()
	sig, err := signer.Sign(hash[:])
	if err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	pubKey := signer.PublicKey()
	for i := range d.tx.Inputs {
		d.tx.Inputs[i].Signature = sig
		d.tx.Inputs[i].PubKey = pubKey
	}
	return nil
}

// Build returns the constructed transaction.
func (d *Draft) Build() *Transaction {
	return d.tx
}
