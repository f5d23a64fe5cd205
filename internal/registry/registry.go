// Package registry owns the hierarchical namespace of data channels.
//
// Channels live under slash-delimited paths. The registry maintains two
// views that must always agree: a tree of groups for traversal by the
// presentation layer, and a flat path index for lookup. Every channel is
// owned by exactly one group; destruction goes through Delete/Unregister so
// both views stay in sync.
package registry

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/logging"
)

// Group is one namespace node: child groups and child channels by name.
type Group struct {
	name     string
	parent   *Group
	groups   map[string]*Group
	channels map[string]data.Channel
}

// Name returns the group's own name (one path segment).
func (g *Group) Name() string { return g.name }

// Parent returns the enclosing group, nil at root level.
func (g *Group) Parent() *Group { return g.parent }

// GroupNames returns the child group names in sorted order.
func (g *Group) GroupNames() []string {
	names := make([]string, 0, len(g.groups))
	for n := range g.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Group lookup by child name.
func (g *Group) Group(name string) (*Group, bool) {
	sub, ok := g.groups[name]
	return sub, ok
}

// ChannelNames returns the child channel names in sorted order.
func (g *Group) ChannelNames() []string {
	names := make([]string, 0, len(g.channels))
	for n := range g.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Channel lookup by child name.
func (g *Group) Channel(name string) (data.Channel, bool) {
	ch, ok := g.channels[name]
	return ch, ok
}

func (g *Group) empty() bool { return len(g.groups) == 0 && len(g.channels) == 0 }

// Registry maps full paths to channels and owns the group tree.
type Registry struct {
	mu    sync.RWMutex
	roots map[string]*Group
	index map[string]data.Channel
	owner map[data.Channel]*Group
	log   *slog.Logger
}

// New creates an empty registry logging with the given logger.
func New(log *slog.Logger) *Registry {
	if log == nil {
		log = logging.Component("registry")
	}
	return &Registry{
		roots: make(map[string]*Group),
		index: make(map[string]data.Channel),
		owner: make(map[data.Channel]*Group),
		log:   log,
	}
}

// Register hooks a channel into the tree under path. The last path segment
// becomes the channel's own name, the leading segments name groups which
// are created as needed. Surrounding whitespace is trimmed.
func (r *Registry) Register(path string, ch data.Channel) {
	path = strings.TrimSpace(path)
	ch.SetFullPath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.index[path] = ch
	r.log.Debug("data registered", "path", path)

	segs := strings.Split(path, "/")
	segs = segs[:len(segs)-1] // basename is the channel itself
	if len(segs) == 0 {
		// Channel without a group: reachable via the index only.
		return
	}

	var parent *Group
	cur := r.roots
	var g *Group
	for _, seg := range segs {
		next, ok := cur[seg]
		if !ok {
			next = &Group{
				name:     seg,
				parent:   parent,
				groups:   make(map[string]*Group),
				channels: make(map[string]data.Channel),
			}
			cur[seg] = next
		}
		g = next
		cur = next.groups
		parent = next
	}
	g.channels[ch.Name()] = ch
	r.owner[ch] = g
}

// Unregister detaches a channel from its owning group and prunes every
// group left empty, walking up to the root set. The flat index is not
// touched; Delete combines both.
func (r *Registry) Unregister(ch data.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(ch)
}

func (r *Registry) unregisterLocked(ch data.Channel) error {
	g, ok := r.owner[ch]
	if !ok {
		// Every registered channel should have an owner; a tree-less
		// channel (bare name) or foreign channel ends up here.
		return errors.ErrNoOwner
	}
	delete(g.channels, ch.Name())
	delete(r.owner, ch)

	for g != nil && g.empty() {
		parent := g.parent
		if parent != nil {
			delete(parent.groups, g.name)
		} else {
			delete(r.roots, g.name)
		}
		g = parent
	}
	return nil
}

// Delete removes a channel from the index and the tree.
func (r *Registry) Delete(ch data.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.index, ch.FullPath())
	if err := r.unregisterLocked(ch); err != nil {
		r.log.Debug("unregister", "path", ch.FullPath(), "error", err)
	}
}

// Find returns the channel at the exact path.
func (r *Registry) Find(path string) (data.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.index[strings.TrimSpace(path)]
	return ch, ok
}

// FindPattern returns the first channel (in path order) whose full path
// matches the regular expression. Used by postprocessing to locate
// semantically named fields across differently-named logs.
func (r *Registry) FindPattern(expr string) (data.Channel, bool) {
	re, err := regexp.Compile(expr)
	if err != nil {
		r.log.Warn("bad search pattern", "pattern", expr, "error", err)
		return nil, false
	}
	for _, path := range r.Paths() {
		if re.MatchString(path) {
			ch, ok := r.Find(path)
			return ch, ok
		}
	}
	return nil, false
}

// SearchWord finds a channel whose path contains the token as a whole
// word, ignoring case.
func (r *Registry) SearchWord(token string) (data.Channel, bool) {
	return r.FindPattern(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
}

// InsertOrMerge is the write path used by merges. A non-empty channel at
// the candidate's path merges the candidate in; an empty placeholder is
// replaced by a clone; an unused path gets a clone registered. The first
// return value reports whether data was added or merged.
func (r *Registry) InsertOrMerge(cand data.Channel) (bool, error) {
	path := cand.FullPath()
	if existing, ok := r.Find(path); ok {
		if !existing.Empty() {
			if err := existing.Merge(cand); err != nil {
				return false, errors.Wrap(errors.ErrMergeConflict, "%s", path)
			}
			return true, nil
		}
		// Placeholder: drop it and take a copy of the candidate.
		r.Delete(existing)
	}
	r.Register(path, cand.Clone())
	return true, nil
}

// Paths returns all registered paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.index))
	for p := range r.index {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Each calls fn for every channel in path order.
func (r *Registry) Each(fn func(path string, ch data.Channel)) {
	for _, p := range r.Paths() {
		if ch, ok := r.Find(p); ok {
			fn(p, ch)
		}
	}
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.index)
}

// RootNames returns the names of the top-level groups, sorted.
func (r *Registry) RootNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.roots))
	for n := range r.roots {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Root returns a top-level group by name.
func (r *Registry) Root(name string) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.roots[name]
	return g, ok
}

// Owner returns the group a channel is registered under.
func (r *Registry) Owner(ch data.Channel) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.owner[ch]
	return g, ok
}

// Clear drops every channel and the whole tree. Used on teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots = make(map[string]*Group)
	r.index = make(map[string]data.Channel)
	r.owner = make(map[data.Channel]*Group)
}
