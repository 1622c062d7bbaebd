package types

import (
	"encoding/json"
	"fmt"
)

// AddressSize is the length of an address payload in bytes.
const AddressSize = 20

// Address HRP (human-readable part) constants for bech32 encoding.
const (
	MainnetHRP = "cfx"
	TestnetHRP = "tcfx"
)

// activeHRP is the address HRP used by String() and MarshalJSON().
// Set once at startup via SetAddressHRP(). Default is mainnet.
var activeHRP = MainnetHRP

// SetAddressHRP sets the active address HRP (call once at startup).
func SetAddressHRP(hrp string) {
	activeHRP = hrp
}

// GetAddressHRP returns the currently active address HRP.
func GetAddressHRP() string {
	return activeHRP
}

// Address is the 20-byte payload of a default lock script: the public key
// hash carried in the lock's args.
type Address [AddressSize]byte

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// LockScript returns the default ownership lock for this address.
func (a Address) LockScript() Script {
	return Script{Template: TemplateSecp256k1Lock, Args: a.Bytes()}
}

// String returns the bech32 encoding under the active HRP.
func (a Address) String() string {
	s, err := Bech32Encode(activeHRP, a[:])
	if err != nil {
		// Encoding a fixed-size payload under a valid HRP cannot fail.
		return ""
	}
	return s
}

// MarshalJSON encodes the address as its bech32 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a bech32 string into an address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes a bech32 address string. The HRP must match either
// the mainnet or testnet HRP; callers that care which network it belongs to
// should compare against GetAddressHRP().
func ParseAddress(s string) (Address, error) {
	hrp, data, err := Bech32Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse address: %w", err)
	}
	if hrp != MainnetHRP && hrp != TestnetHRP {
		return Address{}, fmt.Errorf("parse address: unknown HRP %q", hrp)
	}
	if len(data) != AddressSize {
		return Address{}, fmt.Errorf("parse address: payload must be %d bytes, got %d", AddressSize, len(data))
	}
	var addr Address
	copy(addr[:], data)
	return addr, nil
}
