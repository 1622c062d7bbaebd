// Package token implements the fungible-token layout used by the issuance
// workflow: the quantity cell's u128 amount encoding, the metadata cell's
// token-info encoding, the deterministic script derivations that chain the
// seal, single-use lock, and mint steps together, and the local registry of
// tokens minted through this client.
//
// A token's identity is the hash of the single-use lock script consumed by
// its mint transaction. Since that lock is derived from one specific seal
// outpoint, an identity can never be minted twice.
package token

import (
	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/types"
)

// Metadata is the locally stored record of a minted token.
type Metadata struct {
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	Decimals uint8         `json:"decimals"`
	Supply   string        `json:"supply"` // base units, decimal string
	Creator  types.Address `json:"creator"`
	MintTx   types.Hash    `json:"mint_tx"`
}

// DeriveSingleUseLock builds the one-time-use lock script anchored to a
// seal outpoint. Args = first 20 bytes of BLAKE3(outpoint bytes), so the
// script is spendable exactly once, only alongside that outpoint.
func DeriveSingleUseLock(seal types.Outpoint) types.Script {
	digest := crypto.Hash(seal.Bytes())
	return types.Script{
		Template: types.TemplateSingleUseLock,
		Args:     digest[:20],
	}
}

// DeriveTokenType builds the fungible-token type script for a mint whose
// authorization is the given single-use lock. Args = lock script hash, so
// the token type is recomputable from the lock step's outpoint alone,
// without querying an indexer.
func DeriveTokenType(singleUseLock types.Script) types.Script {
	h := crypto.ScriptHash(singleUseLock)
	return types.Script{
		Template: types.TemplateFungibleToken,
		Args:     h.Bytes(),
	}
}

// DeriveMetadataType builds the uniqueness-enforcing type script for the
// token-info cell. Args = BLAKE3 of the mint transaction's first input
// outpoint, which the ledger guarantees is globally unique.
func DeriveMetadataType(firstInput types.Outpoint) types.Script {
	h := crypto.Hash(firstInput.Bytes())
	return types.Script{
		Template: types.TemplateUniqueMetadata,
		Args:     h.Bytes(),
	}
}

// IDFromType extracts the TokenID from a fungible-token type script.
func IDFromType(typ types.Script) (types.TokenID, bool) {
	if typ.Template != types.TemplateFungibleToken || len(typ.Args) != types.HashSize {
		return types.TokenID{}, false
	}
	var id types.TokenID
	copy(id[:], typ.Args)
	return id, true
}
