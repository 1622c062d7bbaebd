package types

import (
	"encoding/binary"
	"fmt"
)

// OutpointSize is the canonical encoded length of an outpoint.
const OutpointSize = HashSize + 4

// Outpoint references a specific output in a transaction.
type Outpoint struct {
	TxID  Hash   `json:"txid"`
	Index uint32 `json:"index"`
}

// IsZero returns true if the outpoint has a zero TxID and zero index.
func (o Outpoint) IsZero() bool {
	return o.TxID.IsZero() && o.Index == 0
}

// Bytes returns the canonical 36-byte encoding: txid(32) | index(4, LE).
// Script derivation hashes this encoding, so it must never change.
func (o Outpoint) Bytes() []byte {
	buf := make([]byte, OutpointSize)
	copy(buf, o.TxID[:])
	binary.LittleEndian.PutUint32(buf[HashSize:], o.Index)
	return buf
}

// String returns "txid:index" in hex.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Index)
}
