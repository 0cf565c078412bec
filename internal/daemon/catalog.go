package daemon

import (
	"strings"
	"sync"
	"time"

	"github.com/extrarr/extrarr/pkg/extrasync"
)

// Catalog is the daemon's authoritative view of known extras, keyed by the
// full composite identity. Listing order is insertion order.
type Catalog struct {
	mu      sync.Mutex
	records map[extrasync.ExtraKey]extrasync.ExtraRecord
	order   []extrasync.ExtraKey
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{records: make(map[extrasync.ExtraKey]extrasync.ExtraRecord)}
}

// Load seeds the catalog, replacing existing contents.
func (c *Catalog) Load(records []extrasync.ExtraRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[extrasync.ExtraKey]extrasync.ExtraRecord, len(records))
	c.order = c.order[:0]
	for _, r := range records {
		r.Status = extrasync.ParseExtraStatus(string(r.Status))
		key := r.Key()
		if _, dup := c.records[key]; !dup {
			c.order = append(c.order, key)
		}
		c.records[key] = r
	}
}

// Put inserts or replaces one record.
func (c *Catalog) Put(r extrasync.ExtraRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := r.Key()
	if _, ok := c.records[key]; !ok {
		c.order = append(c.order, key)
	}
	c.records[key] = r
}

// Get returns the record for key.
func (c *Catalog) Get(key extrasync.ExtraKey) (extrasync.ExtraRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[key]
	return r, ok
}

// List returns records for one media item. When blacklist is true only
// blacklist-shaped entries are returned, otherwise only extras-shaped ones.
func (c *Catalog) List(mediaType string, mediaId int64, blacklist bool) []extrasync.ExtraRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []extrasync.ExtraRecord
	for _, key := range c.order {
		r := c.records[key]
		if r.MediaType != mediaType || r.MediaId != mediaId {
			continue
		}
		if r.BlacklistShaped() != blacklist {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SetStatus updates the status and failure reason of one record. Unknown
// keys are ignored.
func (c *Catalog) SetStatus(key extrasync.ExtraKey, status extrasync.ExtraStatus, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[key]
	if !ok {
		return
	}
	r.Status = status
	r.Reason = reason
	c.records[key] = r
}

// Delete removes the downloaded file for key: the record stays listed with
// the missing status.
func (c *Catalog) Delete(key extrasync.ExtraKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[key]
	if !ok {
		return false
	}
	r.Status = extrasync.ExtraMissing
	c.records[key] = r
	return true
}

// Unban lifts the rejection for key. Blacklist-shaped records are removed
// entirely; extras-shaped ones stay with the ban fields cleared.
func (c *Catalog) Unban(key extrasync.ExtraKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[key]
	if !ok {
		return false
	}
	if r.BlacklistShaped() {
		delete(c.records, key)
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		return true
	}
	r.Status = extrasync.ExtraNone
	r.Reason = ""
	r.BannedAt = time.Time{}
	c.records[key] = r
	return true
}

// Search returns catalog records matching the query for one media item,
// newest candidates first in insertion order. An empty query matches all.
func (c *Catalog) Search(mediaType string, mediaId int64, query string) []extrasync.ExtraRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	query = strings.ToLower(query)
	var out []extrasync.ExtraRecord
	for _, key := range c.order {
		r := c.records[key]
		if r.MediaType != mediaType || r.MediaId != mediaId {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(r.ExtraTitle), query) &&
			!strings.Contains(strings.ToLower(r.ExtraType), query) {
			continue
		}
		out = append(out, r)
	}
	return out
}
