package token

import (
	"encoding/json"
	"fmt"

	"github.com/cellforge/cellforge/internal/storage"
	"github.com/cellforge/cellforge/pkg/types"
)

// Store persists the registry of tokens minted through this client.
type Store struct {
	db storage.DB
}

// NewStore creates a token registry over the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

func tokenKey(id types.TokenID) []byte {
	return storage.Key(storage.PrefixTokenMeta, id[:])
}

// Put stores the record for a minted token.
func (s *Store) Put(id types.TokenID, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(tokenKey(id), data)
}

// Get retrieves the record for a token.
func (s *Store) Get(id types.TokenID) (*Metadata, error) {
	data, err := s.db.Get(tokenKey(id))
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Has checks whether a token record exists.
func (s *Store) Has(id types.TokenID) (bool, error) {
	return s.db.Has(tokenKey(id))
}

// Entry pairs a token ID with its record.
type Entry struct {
	ID types.TokenID
	Metadata
}

// List returns all minted-token records.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.ForEach(storage.PrefixTokenMeta, func(key, value []byte) error {
		if len(key) < len(storage.PrefixTokenMeta)+types.HashSize {
			return nil // Malformed key, skip.
		}
		var id types.TokenID
		copy(id[:], key[len(storage.PrefixTokenMeta):])

		var meta Metadata
		if err := json.Unmarshal(value, &meta); err != nil {
			return nil // Skip corrupt entries.
		}
		entries = append(entries, Entry{ID: id, Metadata: meta})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("token list: %w", err)
	}
	return entries, nil
}
