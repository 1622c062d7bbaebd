package wallet

import (
	"fmt"
	"sync"

	"github.com/cellforge/cellforge/internal/log"
	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/types"
)

// Session is the explicit wallet context threaded through the orchestrator
// and the balance resolver. There is no ambient wallet state: everything
// that needs the wallet takes a *Session, and the session has an explicit
// connect/disconnect lifecycle.
type Session struct {
	Network string
	Address types.Address
	Lock    types.Script

	mu        sync.Mutex
	signer    crypto.Signer
	connected bool
}

// Connect opens a wallet from the keystore and returns a live session for
// the given account index. The password is used once for seed decryption
// and not retained.
func Connect(ks *Keystore, walletName string, account uint32, password []byte, network string) (*Session, error) {
	seed, err := ks.Load(walletName, password)
	if err != nil {
		return nil, fmt.Errorf("wallet not connected: %w", err)
	}

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("wallet not connected: %w", err)
	}
	key, err := master.DeriveAddress(account, ChangeExternal, 0)
	if err != nil {
		return nil, fmt.Errorf("wallet not connected: %w", err)
	}
	signer, err := key.Signer()
	if err != nil {
		return nil, fmt.Errorf("wallet not connected: %w", err)
	}

	addr := key.Address()
	s := &Session{
		Network:   network,
		Address:   addr,
		Lock:      addr.LockScript(),
		signer:    signer,
		connected: true,
	}
	log.Wallet.Info().
		Str("address", addr.String()).
		Str("network", network).
		Msg("wallet session connected")
	return s, nil
}

// Signer returns the session's signer, or an error if the session has been
// disconnected.
func (s *Session) Signer() (crypto.Signer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil, fmt.Errorf("wallet disconnected")
	}
	return s.signer, nil
}

// Connected reports whether the session is live.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Disconnect tears the session down. Any in-flight signing fails afterward;
// already-submitted transactions are unaffected (they cannot be retracted).
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return
	}
	s.connected = false
	if pk, ok := s.signer.(*crypto.PrivateKey); ok {
		pk.Zero()
	}
	s.signer = nil
	log.Wallet.Info().Str("address", s.Address.String()).Msg("wallet session disconnected")
}
