package types

import (
	"fmt"
	"strings"
)

// bech32Alphabet is the BIP-173 data character set.
const bech32Alphabet = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// bech32MaxLen caps the overall string length per BIP-173.
const bech32MaxLen = 90

// bech32Values maps ASCII characters to their 5-bit values, -1 for invalid.
var bech32Values = func() (t [128]int8) {
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(bech32Alphabet); i++ {
		t[bech32Alphabet[i]] = int8(i)
	}
	return
}()

// Bech32Encode encodes a human-readable part and data bytes into a bech32
// string with a 6-character checksum.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("bech32: empty HRP")
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", fmt.Errorf("bech32: invalid HRP character %q", hrp[i])
		}
	}

	values := regroupTo5(data)
	if len(hrp)+1+len(values)+6 > bech32MaxLen {
		return "", fmt.Errorf("bech32: encoded length exceeds %d", bech32MaxLen)
	}

	// Checksum: run the state over six zero values and flip the final bit.
	chk := bech32ChecksumState(hrp, values)
	for i := 0; i < 6; i++ {
		chk = bech32Step(chk, 0)
	}
	chk ^= 1

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(values) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range values {
		sb.WriteByte(bech32Alphabet[v])
	}
	for i := 0; i < 6; i++ {
		sb.WriteByte(bech32Alphabet[(chk>>uint(5*(5-i)))&31])
	}
	return sb.String(), nil
}

// Bech32Decode decodes a bech32 string into its human-readable part and
// data bytes, verifying the checksum.
func Bech32Decode(s string) (string, []byte, error) {
	if s == "" {
		return "", nil, fmt.Errorf("bech32: empty string")
	}
	if len(s) > bech32MaxLen {
		return "", nil, fmt.Errorf("bech32: length exceeds %d", bech32MaxLen)
	}
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("bech32: mixed case")
	}
	s = strings.ToLower(s)

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 {
		return "", nil, fmt.Errorf("bech32: missing separator")
	}
	if len(s)-sep-1 < 6 {
		return "", nil, fmt.Errorf("bech32: too short")
	}
	hrp := s[:sep]

	values := make([]byte, len(s)-sep-1)
	for i := sep + 1; i < len(s); i++ {
		c := s[i]
		if c > 127 || bech32Values[c] < 0 {
			return "", nil, fmt.Errorf("bech32: invalid character %q", c)
		}
		values[i-sep-1] = byte(bech32Values[c])
	}

	if bech32ChecksumState(hrp, values) != 1 {
		return "", nil, fmt.Errorf("bech32: invalid checksum")
	}

	data, err := regroupTo8(values[:len(values)-6])
	if err != nil {
		return "", nil, err
	}
	return hrp, data, nil
}

// bech32Step advances the BCH checksum state by one 5-bit value.
func bech32Step(chk uint32, v byte) uint32 {
	top := chk >> 25
	chk = (chk&0x1ffffff)<<5 ^ uint32(v)
	for i, g := range [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3} {
		if (top>>uint(i))&1 != 0 {
			chk ^= g
		}
	}
	return chk
}

// bech32ChecksumState runs the checksum over the expanded HRP (high bits,
// zero, low bits) followed by the data values.
func bech32ChecksumState(hrp string, values []byte) uint32 {
	chk := uint32(1)
	for i := 0; i < len(hrp); i++ {
		chk = bech32Step(chk, hrp[i]>>5)
	}
	chk = bech32Step(chk, 0)
	for i := 0; i < len(hrp); i++ {
		chk = bech32Step(chk, hrp[i]&31)
	}
	for _, v := range values {
		chk = bech32Step(chk, v)
	}
	return chk
}

// regroupTo5 repacks bytes into 5-bit groups, zero-padding the tail.
func regroupTo5(data []byte) []byte {
	out := make([]byte, 0, (len(data)*8+4)/5)
	var acc, bits uint
	for _, b := range data {
		acc = acc<<8 | uint(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, byte((acc>>bits)&31))
		}
	}
	if bits > 0 {
		out = append(out, byte((acc<<(5-bits))&31))
	}
	return out
}

// regroupTo8 repacks 5-bit groups into bytes, rejecting non-zero or
// oversized padding.
func regroupTo8(values []byte) ([]byte, error) {
	out := make([]byte, 0, len(values)*5/8)
	var acc, bits uint
	for _, v := range values {
		acc = acc<<5 | uint(v)
		bits += 5
		for bits >= 8 {
			bits -= 8
			out = append(out, byte((acc>>bits)&0xff))
		}
	}
	if bits >= 5 || (acc<<(8-bits))&0xff != 0 {
		return nil, fmt.Errorf("bech32: non-zero padding")
	}
	return out, nil
}
