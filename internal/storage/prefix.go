package storage

// Key prefixes. Every store namespaces its keys under one of these so that
// independent stores can share a single DB.
var (
	PrefixTokenMeta     = []byte("tm/") // tm/<tokenID(32)> -> token metadata JSON
	PrefixWalletSession = []byte("ws/") // ws/<network>     -> cached wallet session JSON
)

// Key joins a prefix with a suffix into a single key.
func Key(prefix, suffix []byte) []byte {
	k := make([]byte, 0, len(prefix)+len(suffix))
	k = append(k, prefix...)
	return append(k, suffix...)
}
