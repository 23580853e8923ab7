// Package overlay keeps pending per-subject edits that win over the record store
// until the store reflects them.
package overlay

import (
	"context"
	"fmt"
	"sync"

	"github.com/roshna21/DevOps-project/core"
)

// Store persists overlay entries. Implementations must be safe for concurrent use.
type Store interface {
	// Load returns every entry of a student, keyed by subject. Missing students yield an empty map.
	Load(ctx context.Context, ns Namespace, studentID string) (map[string]Entry, error)
	// Put replaces the entry of a subject.
	Put(ctx context.Context, ns Namespace, studentID, subject string, e Entry) error
	// Delete removes the entry of a subject.
	Delete(ctx context.Context, ns Namespace, studentID, subject string) error
}

// Cache is the overlay of a single Namespace.
// Store failures never reach the caller: they are logged and the overlay behaves as empty.
type Cache struct {
	ns     Namespace
	store  Store
	logger core.Logger

	mu sync.Mutex // serializes read-modify-write in Set
}

func New(store Store, ns Namespace, logger core.Logger) *Cache {
	return &Cache{ns: ns, store: store, logger: logger}
}

func (c *Cache) Namespace() Namespace { return c.ns }

// Get returns the overlay entries of a student (empty when none).
func (c *Cache) Get(ctx context.Context, studentID string) map[string]Entry {
	entries, err := c.store.Load(ctx, c.ns, studentID)
	if err != nil {
		c.logger.Error(fmt.Sprintf("overlay(%s): loading %s: %v", c.ns, studentID, err), err)
		return map[string]Entry{}
	}
	if entries == nil {
		return map[string]Entry{}
	}
	return entries
}

// Set merges fields into the existing entry of the subject.
func (c *Cache) Set(ctx context.Context, studentID, subject string, fields Entry) {
	if fields.IsZero() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.Get(ctx, studentID)
	e := current[subject].Merge(fields)
	if err := c.store.Put(ctx, c.ns, studentID, subject, e); err != nil {
		c.logger.Error(fmt.Sprintf("overlay(%s): saving %s/%s: %v", c.ns, studentID, subject, err), err)
	}
}

// MergeOverTruth returns the authoritative entries with the overlay applied on top.
func (c *Cache) MergeOverTruth(ctx context.Context, studentID string, truth map[string]Entry) map[string]Entry {
	return Merge(truth, c.Get(ctx, studentID))
}

// Settle drops overlay entries whose every set field already equals the authoritative value.
func (c *Cache) Settle(ctx context.Context, studentID string, truth map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sub, e := range c.Get(ctx, studentID) {
		t, ok := truth[sub]
		if !ok || !e.CoveredBy(t) {
			continue
		}
		if err := c.store.Delete(ctx, c.ns, studentID, sub); err != nil {
			c.logger.Warn(fmt.Sprintf("overlay(%s): settling %s/%s: %v", c.ns, studentID, sub, err), err)
		}
	}
}
