// Package cache holds resolved location entities for the lifetime of the process.
//
// The cache is append-only: entities are added per level and never evicted or
// replaced. A single Cache is constructed at startup and shared by reference.
package cache

import (
	"strings"
	"sync"

	"crmdir/internal/location/models"
)

// Cache keeps one list per level plus id and ISO-code indexes into those lists.
type Cache struct {
	mu     sync.RWMutex
	levels map[models.Level]*levelList
}

type levelList struct {
	entities []models.Entity
	byID     map[string]int
	byISO    map[string]int
}

// New constructs an empty cache with a list for every level.
func New() *Cache {
	c := &Cache{levels: make(map[models.Level]*levelList, len(models.Levels))}
	for _, l := range models.Levels {
		c.levels[l] = &levelList{byID: make(map[string]int), byISO: make(map[string]int)}
	}
	return c
}

// Find returns the entity with the given key at level. For countries the key may
// also be an ISO code, matched case-insensitively.
func (c *Cache) Find(level models.Level, key string) (models.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.levels[level]
	if !ok || key == "" {
		return models.Entity{}, false
	}
	if i, ok := list.byID[key]; ok {
		return list.entities[i], true
	}
	if level == models.LevelCountry {
		if i, ok := list.byISO[strings.ToLower(key)]; ok {
			return list.entities[i], true
		}
	}
	return models.Entity{}, false
}

// Append adds entities not yet present at level and returns how many were added.
// Entities whose id is already cached are skipped, so repeated merges are idempotent.
func (c *Cache) Append(level models.Level, entities ...models.Entity) int {
	if len(entities) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.levels[level]
	if !ok {
		return 0
	}
	added := 0
	for _, e := range entities {
		if e.ID == "" {
			continue
		}
		if _, exists := list.byID[e.ID]; exists {
			continue
		}
		list.entities = append(list.entities, e)
		idx := len(list.entities) - 1
		list.byID[e.ID] = idx
		if level == models.LevelCountry && e.ISOCode != "" {
			iso := strings.ToLower(e.ISOCode)
			if _, taken := list.byISO[iso]; !taken {
				list.byISO[iso] = idx
			}
		}
		added++
	}
	return added
}

// Children returns a copy of the cached entities at level whose parent is parentID.
func (c *Cache) Children(level models.Level, parentID string) []models.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.levels[level]
	if !ok {
		return nil
	}
	var out []models.Entity
	for _, e := range list.entities {
		if e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entities cached at level.
func (c *Cache) Len(level models.Level) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if list, ok := c.levels[level]; ok {
		return len(list.entities)
	}
	return 0
}
