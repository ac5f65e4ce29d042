package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

const shardCount = 16

// Cache holds the most recent reading per room, sharded by room ID so
// writers for different rooms do not contend. Entries live in memory only
// and the cache starts empty on every process start.
type Cache struct {
	shards [shardCount]shard
	now    func() time.Time
}

type shard struct {
	mu    sync.RWMutex
	rooms map[string]domain.Reading
}

func New() *Cache {
	c := &Cache{now: time.Now}
	for i := range c.shards {
		c.shards[i].rooms = make(map[string]domain.Reading)
	}
	return c
}

func (c *Cache) shardFor(roomID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(roomID))
	return &c.shards[h.Sum32()%shardCount]
}

// Put overwrites the entry for the reading's room and stamps LastUpdate.
// Last write wins; there is no versioning.
func (c *Cache) Put(r domain.Reading) {
	r.LastUpdate = c.now()
	s := c.shardFor(r.RoomID)
	s.mu.Lock()
	s.rooms[r.RoomID] = r
	s.mu.Unlock()
}

// Get returns the latest reading for a room, or false if it never reported.
func (c *Cache) Get(roomID string) (domain.Reading, bool) {
	s := c.shardFor(roomID)
	s.mu.RLock()
	r, ok := s.rooms[roomID]
	s.mu.RUnlock()
	return r, ok
}

// Snapshot copies every entry into a fresh map. Each entry is whole; the
// snapshot as a set may trail writes that land while it is being taken.
func (c *Cache) Snapshot() map[string]domain.Reading {
	out := make(map[string]domain.Reading, c.Len())
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for id, r := range s.rooms {
			out[id] = r
		}
		s.mu.RUnlock()
	}
	return out
}

// Len counts distinct rooms seen so far.
func (c *Cache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.rooms)
		s.mu.RUnlock()
	}
	return n
}
