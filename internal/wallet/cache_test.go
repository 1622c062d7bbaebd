package wallet

import (
	"testing"

	"github.com/cellforge/cellforge/internal/storage"
	"github.com/cellforge/cellforge/pkg/types"
)

func TestSessionCacheRoundTrip(t *testing.T) {
	cache := NewSessionCache(storage.NewMemory())

	var addr types.Address
	addr[0] = 0x42
	want := CachedSession{
		Address: addr,
		Lock:    addr.LockScript(),
		Wallet:  "main",
		Account: 0,
	}
	if err := cache.Save("testnet", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := cache.Load("testnet")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a cached session")
	}
	if got.Address != want.Address || got.Wallet != want.Wallet || !got.Lock.Equal(want.Lock) {
		t.Fatalf("got %+v", got)
	}

	// Per-network isolation.
	if _, ok, err := cache.Load("mainnet"); err != nil || ok {
		t.Fatalf("mainnet load = ok=%v err=%v", ok, err)
	}
}

func TestSessionCacheClear(t *testing.T) {
	cache := NewSessionCache(storage.NewMemory())
	if err := cache.Save("testnet", CachedSession{Wallet: "main"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cache.Clear("testnet"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := cache.Load("testnet"); ok {
		t.Fatal("cleared session must not load")
	}
}

// Reconnecting under a different identity replaces the cached entry, so the
// next run surfaces the identity that actually connected last.
func TestSessionCacheOverwrite(t *testing.T) {
	cache := NewSessionCache(storage.NewMemory())

	var first, second types.Address
	first[0] = 0x11
	second[0] = 0x22
	if err := cache.Save("testnet", CachedSession{Address: first, Lock: first.LockScript(), Wallet: "old"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cache.Save("testnet", CachedSession{Address: second, Lock: second.LockScript(), Wallet: "new"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := cache.Load("testnet")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Address != second || got.Wallet != "new" {
		t.Fatalf("got %+v, want the most recent identity", got)
	}
}

func TestCachedSessionMatches(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("keystore: %v", err)
	}
	if err := ks.Create("main", testSeed(t), []byte("pw"), fastParams()); err != nil {
		t.Fatalf("create: %v", err)
	}
	session, err := Connect(ks, "main", 0, []byte("pw"), "testnet")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	cached := CachedSession{Address: session.Address, Lock: session.Lock, Wallet: "main"}
	if !cached.Matches(session) {
		t.Fatal("cached identity must match its own session")
	}

	var other types.Address
	other[0] = 0x99
	stale := CachedSession{Address: other, Lock: other.LockScript()}
	if stale.Matches(session) {
		t.Fatal("stale identity must not match")
	}
	if cached.Matches(nil) {
		t.Fatal("nil session never matches")
	}
}

func TestSessionLifecycle(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("keystore: %v", err)
	}
	if err := ks.Create("main", testSeed(t), []byte("pw"), fastParams()); err != nil {
		t.Fatalf("create: %v", err)
	}

	session, err := Connect(ks, "main", 0, []byte("pw"), "testnet")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !session.Connected() {
		t.Fatal("fresh session must be connected")
	}
	if _, err := session.Signer(); err != nil {
		t.Fatalf("signer: %v", err)
	}

	session.Disconnect()
	if session.Connected() {
		t.Fatal("disconnected session must report disconnected")
	}
	if _, err := session.Signer(); err == nil {
		t.Fatal("disconnected session must not hand out a signer")
	}
	// Idempotent.
	session.Disconnect()
}

func TestConnectWrongPassword(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("keystore: %v", err)
	}
	if err := ks.Create("main", testSeed(t), []byte("pw"), fastParams()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Connect(ks, "main", 0, []byte("bad"), "testnet"); err == nil {
		t.Fatal("connect with wrong password must fail")
	}
}
