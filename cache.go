package fasteval

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ExpressionCache maps source expression text to its already-parsed and
// compiled form, so a host evaluating the same formula against many rows
// of data pays the parse/compile cost once. Each entry carries a uuid so
// cache activity can be correlated across debug log lines.
type ExpressionCache struct {
	mu      sync.Mutex
	cap     int
	order   []string
	entries map[string]cacheEntry
	logFn   func(format string, args ...interface{})
}

type cacheEntry struct {
	id    uuid.UUID
	slab  *Slab
	instr InstructionIndex
}

// NewExpressionCache creates a cache holding at most cap distinct
// expression texts, evicting the oldest entry once full.
func NewExpressionCache(cap int) *ExpressionCache {
	if cap <= 0 {
		cap = 1
	}
	return &ExpressionCache{cap: cap, entries: make(map[string]cacheEntry)}
}

// SetLogFunc installs a callback invoked with a short diagnostic line on
// every cache miss and eviction. A nil logFn (the default) disables it.
func (c *ExpressionCache) SetLogFunc(logFn func(format string, args ...interface{})) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logFn = logFn
}

// Eval parses and compiles text on a miss, or reuses the cached compiled
// form on a hit, then evaluates it against ns.
func (c *ExpressionCache) Eval(text string, ns Namespace) (float64, error) {
	c.mu.Lock()
	entry, ok := c.entries[text]
	if !ok {
		s := NewSlab()
		ei, err := Parse(&s.PS, text)
		if err != nil {
			c.mu.Unlock()
			return 0, err
		}
		ii := Compile(&s.PS, &s.CS, ei)
		entry = cacheEntry{id: uuid.New(), slab: s, instr: ii}
		c.insertLocked(text, entry)
		if c.logFn != nil {
			c.logFn("expr cache miss id=%s text=%q", entry.id, text)
		}
	}
	c.mu.Unlock()
	return EvalCompiled(entry.slab, entry.instr, ns)
}

func (c *ExpressionCache) insertLocked(text string, entry cacheEntry) {
	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		old := c.entries[oldest]
		delete(c.entries, oldest)
		if c.logFn != nil {
			c.logFn("expr cache evict id=%s text=%q", old.id, oldest)
		}
	}
	c.entries[text] = entry
	c.order = append(c.order, text)
}

// Len reports how many distinct expression texts are currently cached.
func (c *ExpressionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PersistTo serializes every cached entry's compiled slab via rezi, keyed
// by its source text, so RestoreFrom can repopulate a cache in a later
// process without recompiling expressions already seen.
func (c *ExpressionCache) PersistTo() (map[string][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]byte, len(c.entries))
	for text, entry := range c.entries {
		b, err := entry.slab.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", text, err)
		}
		out[text] = b
	}
	return out, nil
}

// RestoreFrom loads entries previously produced by PersistTo. Each text's
// root instruction is taken to be the last instruction in its restored
// compile arena, where Compile always leaves the root.
func (c *ExpressionCache) RestoreFrom(snapshots map[string][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for text, b := range snapshots {
		s := NewSlab()
		if err := s.RestoreSnapshot(b); err != nil {
			return fmt.Errorf("restore %q: %w", text, err)
		}
		if len(s.CS.instrs) == 0 {
			continue
		}
		root := InstructionIndex(len(s.CS.instrs) - 1)
		c.insertLocked(text, cacheEntry{id: uuid.New(), slab: s, instr: root})
	}
	return nil
}
