package dispatch

import (
	"sort"
	"strings"
	"sync"

	"github.com/jonny/interactbot/internal/domain/port/inbound"
)

type route[H any] struct {
	key     string
	handler H
}

// routes resolves a custom id: exact routes win, then the longest prefix.
type routes[H any] struct {
	exact    map[string]H
	prefixes []route[H]
}

func (r *routes[H]) add(key string, prefix bool, h H) {
	if !prefix {
		if r.exact == nil {
			r.exact = make(map[string]H)
		}
		r.exact[key] = h
		return
	}
	r.prefixes = append(r.prefixes, route[H]{key: key, handler: h})
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].key) > len(r.prefixes[j].key)
	})
}

func (r *routes[H]) lookup(customID string) (H, bool) {
	if h, ok := r.exact[customID]; ok {
		return h, true
	}
	for _, rt := range r.prefixes {
		if strings.HasPrefix(customID, rt.key) {
			return rt.handler, true
		}
	}
	var zero H
	return zero, false
}

// Registry maps command names and component/modal custom ids to handlers.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]inbound.CommandHandler
	components routes[inbound.ComponentHandler]
	modals     routes[inbound.ModalSubmitHandler]
}

var _ inbound.HandlerRegistry = (*Registry)(nil)

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]inbound.CommandHandler)}
}

// Command registers a handler for a command name. Re-registering replaces it.
func (r *Registry) Command(name string, h inbound.CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = h
}

// Component registers a handler for an exact component custom id.
func (r *Registry) Component(customID string, h inbound.ComponentHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components.add(customID, false, h)
}

// ComponentPrefix registers a handler for every custom id starting with prefix,
// for ids that carry state such as "vote:42".
func (r *Registry) ComponentPrefix(prefix string, h inbound.ComponentHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components.add(prefix, true, h)
}

func (r *Registry) Modal(customID string, h inbound.ModalSubmitHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals.add(customID, false, h)
}

func (r *Registry) ModalPrefix(prefix string, h inbound.ModalSubmitHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals.add(prefix, true, h)
}

func (r *Registry) LookupCommand(name string) (inbound.CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.commands[name]
	return h, ok
}

func (r *Registry) LookupComponent(customID string) (inbound.ComponentHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.components.lookup(customID)
}

func (r *Registry) LookupModal(customID string) (inbound.ModalSubmitHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modals.lookup(customID)
}

// Commands returns the registered command names in sorted order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
