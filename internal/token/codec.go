package token

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// AmountWidth is the byte width of an encoded token amount (u128).
const AmountWidth = 16

// EncodeTokenInfo encodes token metadata into the canonical on-chain layout:
//
//	[decimals:1][len(name):1][name bytes][len(symbol):1][symbol bytes]
//
// An empty name defaults to the symbol. The codec does not validate; range
// checks are a precondition enforced by the orchestrator (see Validate*).
func EncodeTokenInfo(decimals uint8, symbol, name string) []byte {
	if name == "" {
		name = symbol
	}
	nameBytes := []byte(name)
	symbolBytes := []byte(symbol)

	buf := make([]byte, 0, 3+len(nameBytes)+len(symbolBytes))
	buf = append(buf, decimals)
	buf = append(buf, uint8(len(nameBytes)))
	buf = append(buf, nameBytes...)
	buf = append(buf, uint8(len(symbolBytes)))
	buf = append(buf, symbolBytes...)
	return buf
}

// DecodeTokenInfo inverts EncodeTokenInfo.
func DecodeTokenInfo(data []byte) (decimals uint8, symbol, name string, err error) {
	if len(data) < 3 {
		return 0, "", "", fmt.Errorf("token info too short: %d bytes", len(data))
	}

	decimals = data[0]
	off := 1

	nameLen := int(data[off])
	off++
	if off+nameLen+1 > len(data) {
		return 0, "", "", fmt.Errorf("token info truncated in name")
	}
	name = string(data[off : off+nameLen])
	off += nameLen

	symbolLen := int(data[off])
	off++
	if off+symbolLen > len(data) {
		return 0, "", "", fmt.Errorf("token info truncated in symbol")
	}
	symbol = string(data[off : off+symbolLen])

	return decimals, symbol, name, nil
}

// EncodeAmount encodes a non-negative amount as a little-endian fixed-width
// integer (u128 by default). Values wider than the target width are
// truncated to the low bytes; callers validate range beforehand.
func EncodeAmount(v *big.Int, width int) []byte {
	if width <= 0 {
		width = AmountWidth
	}
	buf := make([]byte, width)
	be := v.Bytes() // big-endian, minimal
	if len(be) > width {
		be = be[len(be)-width:]
	}
	for i, b := range be {
		buf[len(be)-1-i] = b
	}
	return buf
}

// DecodeAmount decodes a little-endian fixed-width integer.
func DecodeAmount(data []byte) *big.Int {
	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}

// EncodeTimestamp encodes a unix-millisecond timestamp as the 8-byte cell
// data tag carried by seal and lock cells (anti-replay: two sessions can
// never produce bit-identical seal transactions).
func EncodeTimestamp(unixMilli int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(unixMilli))
	return buf
}
