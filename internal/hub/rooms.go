package hub

import (
	"crypto/sha1"
	"encoding/binary"
	"sync"
)

const shardCount = 16 // tune: 16/64/128 depending on load

type roomBucket struct {
	sync.RWMutex
	members map[string]map[string]*Client // room key -> connection id -> client
}

// Rooms tracks which connections are subscribed to which room key. A room
// exists exactly while its member set is non-empty: the first join creates
// it, the last leave deletes it. There is no create/destroy API and nothing
// else may hold a reference to a room, so an empty room cannot leak.
type Rooms struct {
	shards [shardCount]*roomBucket

	mu     sync.Mutex
	joined map[string]map[string]struct{} // connection id -> room keys, for disconnect
}

func NewRooms() *Rooms {
	r := &Rooms{
		joined: make(map[string]map[string]struct{}),
	}
	for i := 0; i < shardCount; i++ {
		r.shards[i] = &roomBucket{
			members: make(map[string]map[string]*Client),
		}
	}
	return r
}

func shardFor(roomKey string) uint32 {
	h := sha1.Sum([]byte(roomKey))
	return binary.BigEndian.Uint32(h[:4]) % shardCount
}

// Join adds the connection to the room. Re-joining is idempotent. The
// reverse index is written before the bucket so a LeaveAll snapshot never
// observes a bucket membership the index does not know about; a join that
// lands entirely after LeaveAll is undone by the hub's registry re-check.
func (r *Rooms) Join(c *Client, roomKey string) {
	r.mu.Lock()
	keys, ok := r.joined[c.ID]
	if !ok {
		keys = make(map[string]struct{})
		r.joined[c.ID] = keys
	}
	keys[roomKey] = struct{}{}
	r.mu.Unlock()

	b := r.shards[shardFor(roomKey)]
	b.Lock()
	room, ok := b.members[roomKey]
	if !ok {
		room = make(map[string]*Client)
		b.members[roomKey] = room
	}
	room[c.ID] = c
	b.Unlock()
}

// Leave removes the membership. Unknown rooms and non-members are no-ops.
func (r *Rooms) Leave(connID, roomKey string) {
	b := r.shards[shardFor(roomKey)]
	b.Lock()
	if room, ok := b.members[roomKey]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(b.members, roomKey)
		}
	}
	b.Unlock()

	r.mu.Lock()
	if keys, ok := r.joined[connID]; ok {
		delete(keys, roomKey)
		if len(keys) == 0 {
			delete(r.joined, connID)
		}
	}
	r.mu.Unlock()
}

// LeaveAll removes the connection from every room it joined.
func (r *Rooms) LeaveAll(connID string) {
	r.mu.Lock()
	keys := make([]string, 0, len(r.joined[connID]))
	for key := range r.joined[connID] {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	for _, key := range keys {
		r.Leave(connID, key)
	}
}

// Members returns a snapshot of the room's current members. Fan-out iterates
// the snapshot without holding the bucket lock.
func (r *Rooms) Members(roomKey string) []*Client {
	b := r.shards[shardFor(roomKey)]
	b.RLock()
	defer b.RUnlock()

	room, ok := b.members[roomKey]
	if !ok {
		return nil
	}

	out := make([]*Client, 0, len(room))
	for _, c := range room {
		out = append(out, c)
	}
	return out
}

// Count returns the number of non-empty rooms.
func (r *Rooms) Count() int {
	n := 0
	for _, b := range r.shards {
		b.RLock()
		n += len(b.members)
		b.RUnlock()
	}
	return n
}
