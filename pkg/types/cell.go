package types

// Capacity units.
const (
	// UnitsPerCoin is the number of base capacity units in one native coin.
	UnitsPerCoin uint64 = 100_000_000

	// MinCellCapacity is the smallest capacity a plain cell may carry
	// (storage rent for its own bytes).
	MinCellCapacity = 61 * UnitsPerCoin
)

// Cell is a ledger output: native capacity, a lock script defining
// ownership, an optional type script constraining the data, and the data
// itself. Capacity doubles as storage rent and transferable balance.
type Cell struct {
	Capacity uint64  `json:"capacity"`
	Lock     Script  `json:"lock"`
	Type     *Script `json:"type,omitempty"`
	Data     []byte  `json:"data,omitempty"`
}

// LiveCell is an unspent cell as reported by the node's indexer, together
// with where it lives on chain.
type LiveCell struct {
	Cell
	Outpoint    Outpoint `json:"outpoint"`
	BlockHeight uint64   `json:"block_height"`
}

// HasType reports whether the cell carries the given type script.
func (c Cell) HasType(typ Script) bool {
	return c.Type != nil && c.Type.Equal(typ)
}
