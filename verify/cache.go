package verify

import (
	"crypto/sha256"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/cardsim/termauth/cvc"
)

// CachingVerifier memoizes verification outcomes by (mechanism, public
// key, message, signature) digest, so a terminal replaying the same
// External Authenticate data against a slow verifier (or a
// hardware-backed one, in a real card) doesn't pay for it twice. It's
// safe for concurrent use; groupcache/lru.Cache itself is not, so access
// is serialized with a mutex.
type CachingVerifier struct {
	inner Verifier
	mu    sync.Mutex
	cache *lru.Cache
}

var _ Verifier = (*CachingVerifier)(nil)

// NewCachingVerifier wraps inner with an LRU cache holding up to
// maxEntries outcomes.
func NewCachingVerifier(inner Verifier, maxEntries int) *CachingVerifier {
	return &CachingVerifier{inner: inner, cache: lru.New(maxEntries)}
}

type cacheKey [32]byte

func (c *CachingVerifier) Verify(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error {
	key := digestKey(mechanism, pubKey, message, signature)

	c.mu.Lock()
	if cached, ok := c.cache.Get(key); ok {
		c.mu.Unlock()
		if cached == nil {
			return nil
		}
		return cached.(error)
	}
	c.mu.Unlock()

	err := c.inner.Verify(mechanism, pubKey, message, signature)

	c.mu.Lock()
	c.cache.Add(key, err)
	c.mu.Unlock()

	return err
}

func digestKey(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) cacheKey {
	h := sha256.New()
	h.Write([]byte(mechanism))
	if pubKey.EC != nil {
		h.Write(pubKey.EC.X.Bytes())
		h.Write(pubKey.EC.Y.Bytes())
	}
	if pubKey.RSA != nil {
		h.Write(pubKey.RSA.N.Bytes())
	}
	h.Write(message)
	h.Write(signature)
	var key cacheKey
	copy(key[:], h.Sum(nil))
	return key
}
