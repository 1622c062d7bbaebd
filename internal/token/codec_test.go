package token

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"testing"
)

func TestEncodeTokenInfoLayout(t *testing.T) {
	data := EncodeTokenInfo(8, "GOLD", "Gold Coin")

	want := []byte{8, 9}
	want = append(want, []byte("Gold Coin")...)
	want = append(want, 4)
	want = append(want, []byte("GOLD")...)

	if !bytes.Equal(data, want) {
		t.Fatalf("layout mismatch:\n got  %v\n want %v", data, want)
	}
}

func TestEncodeTokenInfoEmptyNameDefaultsToSymbol(t *testing.T) {
	data := EncodeTokenInfo(0, "ABC", "")

	decimals, symbol, name, err := DecodeTokenInfo(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decimals != 0 || symbol != "ABC" {
		t.Fatalf("got decimals=%d symbol=%q", decimals, symbol)
	}
	if name != "ABC" {
		t.Fatalf("empty name should default to symbol, got %q", name)
	}
}

func TestDecodeTokenInfoRoundTrip(t *testing.T) {
	cases := []struct {
		decimals uint8
		symbol   string
		name     string
	}{
		{0, "A", "A"},
		{8, "GOLD", "Gold Coin"},
		{18, "MAXIMUM8", "a name with several words in it"},
	}
	for _, c := range cases {
		data := EncodeTokenInfo(c.decimals, c.symbol, c.name)
		decimals, symbol, name, err := DecodeTokenInfo(data)
		if err != nil {
			t.Fatalf("%q: decode: %v", c.symbol, err)
		}
		if decimals != c.decimals || symbol != c.symbol || name != c.name {
			t.Errorf("%q: got (%d, %q, %q)", c.symbol, decimals, symbol, name)
		}
	}
}

func TestDecodeTokenInfoTruncated(t *testing.T) {
	cases := map[string][]byte{
		"empty":             {},
		"too short":         {8, 4},
		"name overruns":     {8, 10, 'a', 'b'},
		"symbol overruns":   {8, 1, 'a', 5, 'X'},
		"missing symbol len": {8, 1, 'a'},
	}
	for label, data := range cases {
		if _, _, _, err := DecodeTokenInfo(data); err == nil {
			t.Errorf("%s: expected error for %v", label, data)
		}
	}
}

func TestEncodeAmountLittleEndian(t *testing.T) {
	data := EncodeAmount(big.NewInt(0x0102030405060708), AmountWidth)
	if len(data) != AmountWidth {
		t.Fatalf("width = %d, want %d", len(data), AmountWidth)
	}
	want := []byte{8, 7, 6, 5, 4, 3, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(data, want) {
		t.Fatalf("encoding mismatch:\n got  %v\n want %v", data, want)
	}
}

func TestAmountRoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(1_000_000_000),
		new(big.Int).Lsh(big.NewInt(1), 127), // near u128 max
	}
	for _, v := range cases {
		got := DecodeAmount(EncodeAmount(v, AmountWidth))
		if got.Cmp(v) != 0 {
			t.Errorf("round trip: got %s, want %s", got, v)
		}
	}
}

func TestEncodeAmountTruncatesHighBytes(t *testing.T) {
	// A value wider than the width keeps only the low bytes.
	v := new(big.Int).Lsh(big.NewInt(1), 130)
	v.Add(v, big.NewInt(42))
	got := DecodeAmount(EncodeAmount(v, AmountWidth))
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("got %s, want 42", got)
	}
}

func TestEncodeTimestamp(t *testing.T) {
	data := EncodeTimestamp(1700000000000)
	if len(data) != 8 {
		t.Fatalf("length = %d, want 8", len(data))
	}
	if got := binary.LittleEndian.Uint64(data); got != 1700000000000 {
		t.Fatalf("got %d, want 1700000000000", got)
	}
}
