// Package inbox keeps the most recent Cleartext messages received by the
// node so they can be listed again after they scrolled past.
package inbox

import (
	"net/netip"
	"sort"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/lancomm/pkg/discovery"
	"github.com/rs/xid"
)

const (
	// DefaultSize is the number of messages kept by default
	DefaultSize = 64
	// DefaultExpiration is how long a message is kept by default
	DefaultExpiration = time.Hour
)

// Entry is a received message
type Entry struct {
	ID       string
	From     string
	Slot     int
	Source   netip.Addr
	Text     string
	Received time.Time
}

// Inbox is a bounded, expiring store of received messages. Once full the
// least recently used message is evicted.
type Inbox struct {
	cache gcache.Cache[string, Entry]
	now   func() time.Time
}

// New returns an inbox holding up to size messages for at most expiration
func New(size int, expiration time.Duration) *Inbox {
	if size <= 0 {
		size = DefaultSize
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Inbox{
		cache: gcache.New[string, Entry](size).
			LRU().
			Expiration(expiration).
			Build(),
		now: time.Now,
	}
}

// Add stores msg and returns the stored entry
func (i *Inbox) Add(msg discovery.Message) Entry {
	entry := Entry{
		ID:       xid.New().String(),
		From:     msg.From,
		Slot:     msg.Slot,
		Source:   msg.Source,
		Text:     msg.Text,
		Received: i.now(),
	}
	_ = i.cache.Set(entry.ID, entry)
	return entry
}

// Get returns the message with id
func (i *Inbox) Get(id string) (Entry, bool) {
	entry, err := i.cache.Get(id)
	if err != nil {
		return Entry{}, false
	}
	return entry, true
}

// Recent returns up to n messages, oldest first. n <= 0 returns all.
func (i *Inbox) Recent(n int) []Entry {
	ids := i.cache.Keys(true)
	// xids sort in creation order
	sort.Strings(ids)
	if n > 0 && len(ids) > n {
		ids = ids[len(ids)-n:]
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := i.Get(id); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Len returns the number of stored messages
func (i *Inbox) Len() int {
	return i.cache.Len(true)
}

// Clear drops every message
func (i *Inbox) Clear() {
	i.cache.Purge()
}
