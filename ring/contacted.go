package ring

import (
	"container/list"
	"sync"
	"time"

	"chordfs.io/id"
)

// contactedCache remembers recently-seen (identifier -> peer address)
// mappings so routing can skip a hop straight to a peer it has talked
// to before, instead of always forwarding to its immediate successor.
// It is the same least-recently-used container/list structure as
// cache.LRU in this module's ancestry, with one addition: every entry
// carries an expiry. An unbounded, un-expiring address cache can steer
// routing into a loop once the peer at a cached address has left and
// been replaced, so this cache evicts both on capacity and on age.
type contactedCache struct {
	maxEntries int
	ttl        time.Duration

	mu    sync.Mutex
	ll    *list.List
	cache map[id.ID]*list.Element
}

type contactedEntry struct {
	key     id.ID
	peer    Peer
	expires time.Time
}

func newContactedCache(maxEntries int, ttl time.Duration) *contactedCache {
	return &contactedCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		ll:         list.New(),
		cache:      make(map[id.ID]*list.Element),
	}
}

// Add records that key was last known to be owned by p.
func (c *contactedCache) Add(key id.ID, p Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	expires := time.Now().Add(c.ttl)
	if ee, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ee)
		ee.Value.(*contactedEntry).peer = p
		ee.Value.(*contactedEntry).expires = expires
		return
	}
	ele := c.ll.PushFront(&contactedEntry{key: key, peer: p, expires: expires})
	c.cache[key] = ele
	if c.ll.Len() > c.maxEntries {
		c.removeOldest()
	}
}

// Get returns the cached peer for key, if any entry exists and has
// not expired.
func (c *contactedCache) Get(key id.ID) (Peer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.cache[key]
	if !ok {
		return Peer{}, false
	}
	entry := ele.Value.(*contactedEntry)
	if time.Now().After(entry.expires) {
		c.removeElement(ele)
		return Peer{}, false
	}
	c.ll.MoveToFront(ele)
	return entry.peer, true
}

// Remove forgets any cached entry for key, used when a route through
// the cached peer fails so the next lookup falls back to the ring.
func (c *contactedCache) Remove(key id.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.cache[key]; ok {
		c.removeElement(ele)
	}
}

func (c *contactedCache) removeOldest() {
	if ele := c.ll.Back(); ele != nil {
		c.removeElement(ele)
	}
}

func (c *contactedCache) removeElement(ele *list.Element) {
	c.ll.Remove(ele)
	delete(c.cache, ele.Value.(*contactedEntry).key)
}
