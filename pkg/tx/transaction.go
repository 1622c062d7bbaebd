// Package tx defines the client-side transaction model and draft builder.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"

	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/types"
)

// Transaction is a ledger transaction: inputs referencing live cells, and
// output cells created when it is accepted.
type Transaction struct {
	Version uint32       `json:"version"`
	Inputs  []Input      `json:"inputs"`
	Outputs []types.Cell `json:"outputs"`
}

// Input references a cell being consumed.
type Input struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature []byte         `json:"signature"`
	PubKey    []byte         `json:"pubkey"`
}

// inputJSON is the JSON representation of Input with hex-encoded byte fields.
type inputJSON struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature *string        `json:"signature"`
	PubKey    *string        `json:"pubkey"`
}

// MarshalJSON encodes the input with hex-encoded signature and pubkey.
func (in Input) MarshalJSON() ([]byte, error) {
	j := inputJSON{PrevOut: in.PrevOut}
	if in.Signature != nil {
		s := hex.EncodeToString(in.Signature)
		j.Signature = &s
	}
	if in.PubKey != nil {
		p := hex.EncodeToString(in.PubKey)
		j.PubKey = &p
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an input with hex-encoded signature and pubkey.
func (in *Input) UnmarshalJSON(data []byte) error {
	var j inputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	in.PrevOut = j.PrevOut
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return err
		}
		in.Signature = b
	}
	if j.PubKey != nil {
		b, err := hex.DecodeString(*j.PubKey)
		if err != nil {
			return err
		}
		in.PubKey = b
	}
	return nil
}

// Hash computes the transaction ID (BLAKE3 of the serialized signing data).
// Signatures are excluded to avoid a circular dependency during signing.
func (tx *Transaction) Hash() types.Hash {
	return crypto.Hash(tx.SigningBytes())
}

// SigningBytes returns the canonical byte representation used for signing.
//
// Layout: version(4) | input_count(4) | [outpoint(36)]... | output_count(4) |
// [capacity(8) + lock + type_flag(1) + type? + data_len(4) + data]...
// where a script serializes as template(1) + args_len(4) + args.
func (tx *Transaction) SigningBytes() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, tx.Version)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, in.PrevOut.Bytes()...)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Capacity)
		buf = appendScript(buf, out.Lock)
		if out.Type != nil {
			buf = append(buf, 1)
			buf = appendScript(buf, *out.Type)
		} else {
			buf = append(buf, 0)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.Data)))
		buf = append(buf, out.Data...)
	}

	return buf
}

func appendScript(buf []byte, s types.Script) []byte {
	buf = append(buf, byte(s.Template))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Args)))
	return append(buf, s.Args...)
}

// TotalOutputCapacity returns the sum of all output capacities, saturating
// at MaxUint64 (the node rejects overflowing transactions anyway).
func (tx *Transaction) TotalOutputCapacity() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		if total > math.MaxUint64-out.Capacity {
			return math.MaxUint64
		}
		total += out.Capacity
	}
	return total
}

// InputOutpoints returns the outpoints consumed by this transaction.
func (tx *Transaction) InputOutpoints() []types.Outpoint {
	ops := make([]types.Outpoint, len(tx.Inputs))
	for i, in := range tx.Inputs {
		ops[i] = in.PrevOut
	}
	return ops
}
