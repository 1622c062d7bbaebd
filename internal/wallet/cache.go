package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/cellforge/cellforge/internal/storage"
	"github.com/cellforge/cellforge/pkg/types"
)

// CachedSession is the persisted last-known wallet identity, kept so the UI
// can show the previous address after a reload. It is never authoritative:
// a new issuance session always re-validates against a live keystore
// connection first.
type CachedSession struct {
	Address types.Address `json:"address"`
	Lock    types.Script  `json:"lock"`
	Wallet  string        `json:"wallet"`
	Account uint32        `json:"account"`
}

// SessionCache persists the last-known session per network.
type SessionCache struct {
	db storage.DB
}

// NewSessionCache creates a session cache over the given database.
func NewSessionCache(db storage.DB) *SessionCache {
	return &SessionCache{db: db}
}

func sessionKey(network string) []byte {
	return storage.Key(storage.PrefixWalletSession, []byte(network))
}

// Save records the session's identity for later resumption.
func (c *SessionCache) Save(network string, cached CachedSession) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("session cache marshal: %w", err)
	}
	return c.db.Put(sessionKey(network), data)
}

// Load returns the cached identity for a network, or ok=false if none.
func (c *SessionCache) Load(network string) (CachedSession, bool, error) {
	data, err := c.db.Get(sessionKey(network))
	if err == storage.ErrNotFound {
		return CachedSession{}, false, nil
	}
	if err != nil {
		return CachedSession{}, false, fmt.Errorf("session cache get: %w", err)
	}
	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return CachedSession{}, false, fmt.Errorf("session cache unmarshal: %w", err)
	}
	return cached, true, nil
}

// Clear removes the cached identity (wallet disconnect or teardown).
func (c *SessionCache) Clear(network string) error {
	return c.db.Delete(sessionKey(network))
}

// Matches reports whether a live session corresponds to the cached
// identity. Used to detect a stale cache before reuse.
func (c CachedSession) Matches(s *Session) bool {
	return s != nil && c.Address == s.Address && c.Lock.Equal(s.Lock)
}
