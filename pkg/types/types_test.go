package types

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	var addr Address
	for i := range addr {
		addr[i] = byte(i)
	}

	s := addr.String()
	if !strings.HasPrefix(s, GetAddressHRP()+"1") {
		t.Fatalf("encoded address %q lacks the active HRP", s)
	}

	got, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != addr {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestParseAddressAcceptsBothNetworks(t *testing.T) {
	var addr Address
	addr[0] = 0xaa

	for _, hrp := range []string{MainnetHRP, TestnetHRP} {
		s, err := Bech32Encode(hrp, addr[:])
		if err != nil {
			t.Fatalf("encode %s: %v", hrp, err)
		}
		if _, err := ParseAddress(s); err != nil {
			t.Fatalf("parse %s address: %v", hrp, err)
		}
	}
}

func TestParseAddressRejects(t *testing.T) {
	cases := map[string]string{
		"garbage":     "not-an-address",
		"empty":       "",
		"bad hrp":     mustBech32(t, "btc", make([]byte, AddressSize)),
		"bad payload": mustBech32(t, MainnetHRP, make([]byte, 12)),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAddress(s); err == nil {
				t.Fatalf("ParseAddress(%q) accepted", s)
			}
		})
	}
}

func mustBech32(t *testing.T, hrp string, payload []byte) string {
	t.Helper()
	s, err := Bech32Encode(hrp, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return s
}

func TestAddressJSON(t *testing.T) {
	var addr Address
	addr[5] = 0x33

	data, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Address
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != addr {
		t.Fatal("JSON round trip mismatch")
	}
}

func TestAddressLockScript(t *testing.T) {
	var addr Address
	addr[0] = 0x01
	lock := addr.LockScript()
	if lock.Template != TemplateSecp256k1Lock {
		t.Fatalf("template = %v", lock.Template)
	}
	if !bytes.Equal(lock.Args, addr[:]) {
		t.Fatal("lock args must be the address payload")
	}
	// Args must be a copy, not an alias.
	lock.Args[0] = 0xff
	if addr[0] != 0x01 {
		t.Fatal("LockScript aliased the address")
	}
}

func TestOutpointBytesLayout(t *testing.T) {
	var id Hash
	for i := range id {
		id[i] = byte(i + 1)
	}
	op := Outpoint{TxID: id, Index: 0x01020304}

	buf := op.Bytes()
	if len(buf) != OutpointSize {
		t.Fatalf("encoded length = %d", len(buf))
	}
	if !bytes.Equal(buf[:HashSize], id[:]) {
		t.Fatal("txid bytes mismatch")
	}
	if got := binary.LittleEndian.Uint32(buf[HashSize:]); got != 0x01020304 {
		t.Fatalf("index = %#x", got)
	}
}

func TestOutpointIsZero(t *testing.T) {
	if !(Outpoint{}).IsZero() {
		t.Fatal("zero outpoint must report zero")
	}
	if (Outpoint{Index: 1}).IsZero() {
		t.Fatal("nonzero index must not report zero")
	}
}

func TestScriptEqual(t *testing.T) {
	a := Script{Template: TemplateSingleUseLock, Args: []byte{1, 2, 3}}
	b := Script{Template: TemplateSingleUseLock, Args: []byte{1, 2, 3}}
	if !a.Equal(b) {
		t.Fatal("identical scripts must be equal")
	}
	if a.Equal(Script{Template: TemplateSecp256k1Lock, Args: []byte{1, 2, 3}}) {
		t.Fatal("different templates must not be equal")
	}
	if a.Equal(Script{Template: TemplateSingleUseLock, Args: []byte{1, 2}}) {
		t.Fatal("different args must not be equal")
	}
}

func TestScriptSigningBytes(t *testing.T) {
	s := Script{Template: TemplateFungibleToken, Args: []byte{0xaa, 0xbb}}
	got := s.SigningBytes()
	want := []byte{byte(TemplateFungibleToken), 0xaa, 0xbb}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestScriptJSONRoundTrip(t *testing.T) {
	s := Script{Template: TemplateUniqueMetadata, Args: []byte{0x01, 0x02}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Script
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(s) {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestScriptTemplateString(t *testing.T) {
	if TemplateSingleUseLock.String() != "SingleUseLock" {
		t.Fatalf("got %q", TemplateSingleUseLock.String())
	}
	if ScriptTemplate(0xee).String() != "Unknown" {
		t.Fatal("unknown template must stringify as Unknown")
	}
}
