// Package jobs tracks which entities currently have a run in flight.
package jobs

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Kind names the kind of entity a run owns
type Kind string

const (
	KindEpisode     Kind = "episode"
	KindDigest      Kind = "digest"
	KindFeedRefresh Kind = "feed_refresh"
)

// ErrInFlight is returned when a run for the same key is already active
var ErrInFlight = errors.New("a run for this item is already in flight")

// Key identifies one guarded entity
type Key struct {
	Kind Kind
	ID   uint
}

// Entry describes a held lease
type Entry struct {
	Kind  Kind      `json:"kind"`
	ID    uint      `json:"id"`
	Since time.Time `json:"since"`
}

// Registry is a lock-guarded set of in-flight keys. A key is held from
// TryAcquire until its Lease is released.
type Registry struct {
	mu   sync.Mutex
	held map[Key]time.Time
	now  func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		held: make(map[Key]time.Time),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Lease is the scoped ownership of a key. Release is safe to call more
// than once and from any goroutine.
type Lease struct {
	registry *Registry
	key      Key
	once     sync.Once
}

// Key returns the key the lease holds
func (l *Lease) Key() Key {
	return l.key
}

// Release gives the key back
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.registry.mu.Lock()
		delete(l.registry.held, l.key)
		l.registry.mu.Unlock()
	})
}

// TryAcquire takes the key if nobody holds it
func (r *Registry) TryAcquire(kind Kind, id uint) (*Lease, bool) {
	key := Key{Kind: kind, ID: id}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.held[key]; busy {
		return nil, false
	}
	r.held[key] = r.now()
	return &Lease{registry: r, key: key}, true
}

// Held reports whether the key is currently leased
func (r *Registry) Held(kind Kind, id uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[Key{Kind: kind, ID: id}]
	return ok
}

// Run executes fn while holding the key and releases it on every exit
// path, panics included. It returns ErrInFlight without calling fn when
// the key is taken.
func (r *Registry) Run(kind Kind, id uint, fn func() error) error {
	lease, ok := r.TryAcquire(kind, id)
	if !ok {
		return ErrInFlight
	}
	defer lease.Release()
	return fn()
}

// Count returns how many keys of kind are held
func (r *Registry) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for key := range r.held {
		if key.Kind == kind {
			n++
		}
	}
	return n
}

// Snapshot lists held leases ordered by kind then id
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	entries := make([]Entry, 0, len(r.held))
	for key, since := range r.held {
		entries = append(entries, Entry{Kind: key.Kind, ID: key.ID, Since: since})
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}
