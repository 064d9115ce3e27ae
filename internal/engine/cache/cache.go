// Package cache implements the fingerprint store over a key/value backend.
//
// Layout: one fingerprint record per node name under index/<shortHash(name)>,
// raw value blobs under objects/<longHash>. Records are JSON; blobs are
// opaque bytes addressed by their own content hash, so the object space is
// append-only and records are the only mutable mapping.
package cache

import (
	"encoding/json"
	"errors"
	"runtime"
	"slices"
	"sync"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	indexPrefix  = "index/"
	objectPrefix = "objects/"
)

// Cache owns all fingerprint records and value blobs for one location.
type Cache struct {
	backend ports.Backend
}

// New creates a Cache over the given backend.
func New(backend ports.Backend) *Cache {
	return &Cache{backend: backend}
}

// Location identifies the underlying cache.
func (c *Cache) Location() string { return c.backend.Location() }

// Lookup returns the fingerprint record for name, or nil if the node has
// never been built since the cache was last cleared.
func (c *Cache) Lookup(name string) (*domain.Fingerprint, error) {
	data, err := c.backend.Get(recordKey(name))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "node", name)
	}

	var rec domain.Fingerprint
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "corrupt fingerprint record"), "node", name)
	}
	return &rec, nil
}

// Commit stores the value blob and then the fingerprint record. The record
// write is the commit point: until it lands, the previous record (or its
// absence) stays visible, so a node is never observed half-built.
func (c *Cache) Commit(rec domain.Fingerprint, value []byte) error {
	if rec.ValueHash != "" {
		if err := c.backend.Set(objectKey(rec.ValueHash), value); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "node", rec.Name)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to marshal fingerprint record"), "node", rec.Name)
	}
	if err := c.backend.Set(recordKey(rec.Name), data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "node", rec.Name)
	}
	return nil
}

// Read returns the stored value of a built node.
func (c *Cache) Read(name string) ([]byte, error) {
	rec, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ValueHash == "" {
		return nil, zerr.With(domain.ErrNotCached, "node", name)
	}

	value, err := c.backend.Get(objectKey(rec.ValueHash))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "node", name)
	}
	return value, nil
}

// Names returns the names of all recorded nodes, sorted.
func (c *Cache) Names() ([]string, error) {
	recs, err := c.records()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.Name)
	}
	slices.Sort(names)
	return names, nil
}

// Clean removes the fingerprint records for the given names (all records
// when names is empty). With destroy, the cleaned nodes' value blobs are
// deleted too unless a surviving record still references them. With purge,
// every blob left unreferenced by the surviving records is removed.
func (c *Cache) Clean(names []string, destroy, purge bool) error {
	recs, err := c.records()
	if err != nil {
		return err
	}

	cleaning := make(map[string]bool, len(names))
	if len(names) == 0 {
		for _, rec := range recs {
			cleaning[rec.Name] = true
		}
	} else {
		for _, name := range names {
			cleaning[name] = true
		}
	}

	surviving := make(map[string]bool)
	var removed []domain.Fingerprint
	for _, rec := range recs {
		if cleaning[rec.Name] {
			removed = append(removed, rec)
			continue
		}
		if rec.ValueHash != "" {
			surviving[rec.ValueHash] = true
		}
	}

	for _, rec := range removed {
		if err := c.backend.Delete(recordKey(rec.Name)); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "node", rec.Name)
		}
	}

	if destroy {
		if err := c.deleteBlobs(removed, surviving); err != nil {
			return err
		}
	}
	if purge {
		return c.purgeUnreferenced(surviving)
	}
	return nil
}

func (c *Cache) deleteBlobs(removed []domain.Fingerprint, surviving map[string]bool) error {
	for _, rec := range removed {
		if rec.ValueHash == "" || surviving[rec.ValueHash] {
			continue
		}
		if err := c.backend.Delete(objectKey(rec.ValueHash)); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "node", rec.Name)
		}
	}
	return nil
}

// purgeUnreferenced scans the object space and deletes blobs no surviving
// record points at. Deletions are independent, so they run in parallel.
func (c *Cache) purgeUnreferenced(surviving map[string]bool) error {
	keys, err := c.backend.List()
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheIO.Error())
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for _, key := range keys {
		hash, ok := objectHash(key)
		if !ok || surviving[hash] {
			continue
		}
		g.Go(func() error {
			if err := c.backend.Delete(key); err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrCacheIO.Error()), "key", key)
			}
			return nil
		})
	}

	return g.Wait()
}

func (c *Cache) records() ([]domain.Fingerprint, error) {
	keys, err := c.backend.List()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheIO.Error())
	}

	var (
		mu   sync.Mutex
		recs []domain.Fingerprint
	)
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for _, key := range keys {
		if !isRecordKey(key) {
			continue
		}
		g.Go(func() error {
			data, err := c.backend.Get(key)
			if err != nil {
				if errors.Is(err, domain.ErrKeyNotFound) {
					return nil
				}
				return zerr.Wrap(err, domain.ErrCacheIO.Error())
			}
			var rec domain.Fingerprint
			if err := json.Unmarshal(data, &rec); err != nil {
				return zerr.With(zerr.Wrap(err, "corrupt fingerprint record"), "key", key)
			}
			mu.Lock()
			recs = append(recs, rec)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

func recordKey(name string) string {
	return indexPrefix + ShortKey(name) + ".json"
}

func objectKey(hash string) string {
	return objectPrefix + hash
}

func isRecordKey(key string) bool {
	return len(key) > len(indexPrefix) && key[:len(indexPrefix)] == indexPrefix
}

func objectHash(key string) (string, bool) {
	if len(key) <= len(objectPrefix) || key[:len(objectPrefix)] != objectPrefix {
		return "", false
	}
	return key[len(objectPrefix):], true
}
