// Package catalog holds the tables and menu items a POS session orders against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
)

var ErrNotLoaded = errors.New("catalog not loaded")

// Source is the part of the backend the cache reads from.
type Source interface {
	ListTables(ctx context.Context, q backend.TableQuery) ([]backend.Table, error)
	ListMenuItems(ctx context.Context, q backend.MenuQuery) ([]backend.MenuItem, error)
}

type Snapshot struct {
	Restaurant string             `json:"restaurant"`
	Tables     []backend.Table    `json:"tables"`
	MenuItems  []backend.MenuItem `json:"menu_items"`
	LoadedAt   time.Time          `json:"loaded_at"`
}

// Cache is a read-through copy of the catalog. A load replaces the whole
// snapshot; a failed load leaves the previous one untouched.
type Cache struct {
	src Source

	mu       sync.RWMutex
	snap     *Snapshot
	nextGen  uint64
	applied  uint64
	lastRest string
}

func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

func (c *Cache) Load(ctx context.Context, restaurantID string) (Snapshot, error) {
	c.mu.Lock()
	c.nextGen++
	gen := c.nextGen
	c.mu.Unlock()

	var (
		tables []backend.Table
		items  []backend.MenuItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.src.ListTables(gctx, backend.TableQuery{Restaurant: restaurantID})
		if err != nil {
			return fmt.Errorf("load tables: %w", err)
		}
		tables = t
		return nil
	})
	g.Go(func() error {
		m, err := c.src.ListMenuItems(gctx, backend.MenuQuery{Restaurant: restaurantID})
		if err != nil {
			return fmt.Errorf("load menu items: %w", err)
		}
		items = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("catalog load: %w", err)
	}

	snap := &Snapshot{
		Restaurant: restaurantID,
		Tables:     tables,
		MenuItems:  items,
		LoadedAt:   time.Now().UTC(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a newer load already landed
	if gen < c.applied {
		return *c.snap, nil
	}
	c.applied = gen
	c.snap = snap
	c.lastRest = restaurantID
	return *snap, nil
}

// Refresh reloads the restaurant of the last successful load.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.RLock()
	rest, loaded := c.lastRest, c.snap != nil
	c.mu.RUnlock()
	if !loaded {
		return ErrNotLoaded
	}
	_, err := c.Load(ctx, rest)
	return err
}

func (c *Cache) Snapshot() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return Snapshot{}, false
	}
	return *c.snap, true
}

func (s Snapshot) FindMenuItem(id string) (backend.MenuItem, bool) {
	for _, m := range s.MenuItems {
		if m.ID == id {
			return m, true
		}
	}
	return backend.MenuItem{}, false
}

func (s Snapshot) FindTable(id string) (backend.Table, bool) {
	for _, t := range s.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return backend.Table{}, false
}

type MenuFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
}

type TableFilter struct {
	Status backend.TableStatus
	Search string
}

// FilterMenu combines every non-empty criterion with AND. Search matches
// name or category, case-insensitively.
func (s Snapshot) FilterMenu(f MenuFilter) []backend.MenuItem {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]backend.MenuItem, 0, len(s.MenuItems))
	for _, m := range s.MenuItems {
		if f.ActiveOnly && !m.IsActive {
			continue
		}
		if f.Category != "" && !strings.EqualFold(m.Category, f.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Category), search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FilterTables matches search against the table number.
func (s Snapshot) FilterTables(f TableFilter) []backend.Table {
	search := strings.TrimSpace(f.Search)
	out := make([]backend.Table, 0, len(s.Tables))
	for _, t := range s.Tables {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if search != "" && !strings.Contains(strconv.Itoa(t.Number), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}
