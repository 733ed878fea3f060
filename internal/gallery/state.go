// Package gallery holds the current, ordered list of content items that
// every view renders from.
//
// The list is replaced wholesale on each refresh. Readers always see either
// the previous list or the new one, never a mix.
package gallery

import (
	"sync"
	"sync/atomic"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

// State is the single shared gallery. The zero value is an empty gallery.
type State struct {
	current atomic.Pointer[Snapshot]

	mu        sync.Mutex
	subs      map[chan Snapshot]struct{}
	published uint64
}

// New creates an empty State.
func New() *State {
	return &State{}
}

func (s *State) load() *Snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return &Snapshot{Items: []content.Item{}}
}

// Replace swaps in items as the new gallery and returns the size of the
// list it replaced. The caller must not modify items afterwards.
func (s *State) Replace(items []content.Item) int {
	if items == nil {
		items = []content.Item{}
	}
	for {
		prev := s.current.Load()
		next := &Snapshot{Version: 1, Items: items}
		prevCount := 0
		if prev != nil {
			next.Version = prev.Version + 1
			prevCount = len(prev.Items)
		}
		if s.current.CompareAndSwap(prev, next) {
			s.publish(*next)
			return prevCount
		}
	}
}

// Items returns a copy of the ordered list.
func (s *State) Items() []content.Item {
	items := s.load().Items
	out := make([]content.Item, len(items))
	copy(out, items)
	return out
}

// Count returns the number of items.
func (s *State) Count() int {
	return len(s.load().Items)
}

// Version increases by one with every change.
func (s *State) Version() uint64 {
	return s.load().Version
}

// Partition groups items by type, keeping list order within each group.
// Every known type has an entry, possibly empty.
func (s *State) Partition() map[content.Type][]content.Item {
	parts := make(map[content.Type][]content.Item, len(content.Types))
	for _, t := range content.Types {
		parts[t] = []content.Item{}
	}
	for _, item := range s.load().Items {
		parts[item.Type] = append(parts[item.Type], item)
	}
	return parts
}

// View returns the items matching opts, in list order.
func (s *State) View(opts ViewOptions) []content.Item {
	items := s.load().Items
	result := make([]content.Item, 0, len(items))
	for _, item := range items {
		if !matchesType(item, opts.Types) {
			continue
		}
		result = append(result, item)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result
}

func matchesType(item content.Item, types []content.Type) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if item.Type == t {
			return true
		}
	}
	return false
}

// MarkRenderFailed replaces the embed of item id with its placeholder. The
// item stays in place; the mark is lost on the next Replace.
func (s *State) MarkRenderFailed(id string) (content.Item, error) {
	for {
		prev := s.current.Load()
		if prev == nil {
			return content.Item{}, content.ErrItemNotFound
		}
		idx := -1
		for i, item := range prev.Items {
			if item.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return content.Item{}, content.ErrItemNotFound
		}
		if prev.Items[idx].Embed.Kind == content.EmbedPlaceholder {
			return prev.Items[idx], nil
		}

		items := make([]content.Item, len(prev.Items))
		copy(items, prev.Items)
		items[idx].Embed = items[idx].Embed.Failed()
		next := &Snapshot{Version: prev.Version + 1, Items: items}
		if s.current.CompareAndSwap(prev, next) {
			s.publish(*next)
			return items[idx], nil
		}
	}
}

// Subscribe returns a channel that receives every new snapshot. A slow
// subscriber only sees the newest one. Call cancel to stop receiving.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[chan Snapshot]struct{})
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *State) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Concurrent writers may get here out of order.
	if snap.Version < s.published {
		return
	}
	s.published = snap.Version
	for ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the stale snapshot and offer the newest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
