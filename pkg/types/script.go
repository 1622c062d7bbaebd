package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
)

// ScriptTemplate identifies a well-known on-chain script the node can
// instantiate from args. The client never carries script binaries, only
// template references.
type ScriptTemplate uint8

const (
	// TemplateSecp256k1Lock is the default ownership lock.
	// Args = 20-byte public key hash.
	TemplateSecp256k1Lock ScriptTemplate = 0x01

	// TemplateSingleUseLock is a lock derived from one specific outpoint.
	// It authorizes exactly one spend, from exactly that lineage.
	// Args = 20-byte digest of the anchoring outpoint.
	TemplateSingleUseLock ScriptTemplate = 0x02

	// TemplateFungibleToken types a token-quantity cell.
	// Args = 32-byte hash of the single-use lock script.
	TemplateFungibleToken ScriptTemplate = 0x10

	// TemplateUniqueMetadata types a token-metadata cell whose identity is
	// globally unique. Args = 32-byte digest of the mint tx's first input.
	TemplateUniqueMetadata ScriptTemplate = 0x11
)

// String returns a human-readable name for the template.
func (t ScriptTemplate) String() string {
	switch t {
	case TemplateSecp256k1Lock:
		return "Secp256k1Lock"
	case TemplateSingleUseLock:
		return "SingleUseLock"
	case TemplateFungibleToken:
		return "FungibleToken"
	case TemplateUniqueMetadata:
		return "UniqueMetadata"
	default:
		return "Unknown"
	}
}

// Script is a template reference plus its instantiation args. As a lock it
// defines the spending condition of a cell; as a type it constrains the
// cell's data.
type Script struct {
	Template ScriptTemplate `json:"template"`
	Args     []byte         `json:"args"`
}

// Equal reports whether two scripts are identical.
func (s Script) Equal(other Script) bool {
	return s.Template == other.Template && bytes.Equal(s.Args, other.Args)
}

// SigningBytes returns the canonical encoding hashed into script hashes
// and transaction IDs: template(1) | args.
func (s Script) SigningBytes() []byte {
	buf := make([]byte, 0, 1+len(s.Args))
	buf = append(buf, byte(s.Template))
	return append(buf, s.Args...)
}

// scriptJSON is the JSON representation of a Script with hex-encoded args.
type scriptJSON struct {
	Template ScriptTemplate `json:"template"`
	Args     string         `json:"args"`
}

// MarshalJSON encodes the script with hex-encoded args.
func (s Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(scriptJSON{
		Template: s.Template,
		Args:     hex.EncodeToString(s.Args),
	})
}

// UnmarshalJSON decodes a script with hex-encoded args.
func (s *Script) UnmarshalJSON(data []byte) error {
	var j scriptJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	s.Template = j.Template
	if j.Args != "" {
		b, err := hex.DecodeString(j.Args)
		if err != nil {
			return err
		}
		s.Args = b
	}
	return nil
}
