package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Dosada05/tournament-client/models"
)

// completionOverrideTTL bounds how long a local COMPLETED flip is shown while
// the remote list still reports the old status.
const completionOverrideTTL = 10 * time.Minute

type catalogEntry struct {
	tournaments []models.Tournament
	expiresAt   time.Time
}

// Catalog caches the viewer-scoped tournament list. The list differs per
// viewer (user_role), so entries are keyed by bearer token.
type Catalog struct {
	remote RemoteAPI
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu        sync.Mutex
	gen       uint64 // растет при каждом Invalidate
	entries   map[string]catalogEntry
	completed map[int64]time.Time
}

func NewCatalog(remote RemoteAPI, ttl time.Duration) *Catalog {
	return &Catalog{
		remote:    remote,
		ttl:       ttl,
		now:       time.Now,
		entries:   make(map[string]catalogEntry),
		completed: make(map[int64]time.Time),
	}
}

// List returns the tournaments visible to token, from cache when fresh.
// A fetch started before an Invalidate is neither shared with later callers
// nor stored.
func (c *Catalog) List(ctx context.Context, token string) ([]models.Tournament, error) {
	c.mu.Lock()
	e, ok := c.entries[token]
	gen := c.gen
	c.mu.Unlock()
	if ok && c.now().Before(e.expiresAt) {
		return c.withOverrides(e.tournaments), nil
	}

	key := token + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		list, err := c.remote.ListTournaments(ctx, token)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			if c.gen == gen {
				c.entries[token] = catalogEntry{tournaments: list, expiresAt: c.now().Add(c.ttl)}
			}
			c.mu.Unlock()
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return c.withOverrides(v.([]models.Tournament)), nil
}

// Get returns one tournament of the viewer's list.
func (c *Catalog) Get(ctx context.Context, token string, id int64) (*models.Tournament, error) {
	list, err := c.List(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrTournamentNotFound
}

// Invalidate drops every cached list. A write by one viewer changes counters
// seen by all of them.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]catalogEntry)
	c.mu.Unlock()
}

// MarkCompleted shows id as COMPLETED until the remote catches up or the
// override expires.
func (c *Catalog) MarkCompleted(id int64) {
	c.mu.Lock()
	c.completed[id] = c.now().Add(completionOverrideTTL)
	c.mu.Unlock()
}

// Sweep removes expired lists and overrides and returns how many lists it dropped.
func (c *Catalog) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	for id, until := range c.completed {
		if !now.Before(until) {
			delete(c.completed, id)
		}
	}
	return removed
}

// withOverrides returns a copy of list with pending completion flips applied.
func (c *Catalog) withOverrides(list []models.Tournament) []models.Tournament {
	out := make([]models.Tournament, len(list))
	copy(out, list)

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range out {
		until, ok := c.completed[out[i].ID]
		if !ok {
			continue
		}
		switch {
		case out[i].Stage() == models.StageCompleted, !now.Before(until):
			delete(c.completed, out[i].ID)
		default:
			out[i].RawStatus = string(models.StageCompleted)
		}
	}
	return out
}
