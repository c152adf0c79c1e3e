package lint

import "sync"

// registry is the ordered global rule registry. Rules self-register from
// their package init functions; registration order is preserved so runs are
// deterministic.
var registry = struct {
	mu    sync.RWMutex
	rules []RuleDef
	byID  map[string]int
}{
	byID: make(map[string]int),
}

// Register adds a rule to the registry. Registering an ID twice replaces the
// earlier definition in place.
func Register(def RuleDef) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if i, ok := registry.byID[def.ID]; ok {
		registry.rules[i] = def
		return
	}
	registry.byID[def.ID] = len(registry.rules)
	registry.rules = append(registry.rules, def)
}

// All returns every registered rule in registration order.
func All() []RuleDef {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	out := make([]RuleDef, len(registry.rules))
	copy(out, registry.rules)
	return out
}

// Get returns a rule by ID.
func Get(id string) (RuleDef, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if i, ok := registry.byID[id]; ok {
		return registry.rules[i], true
	}
	return RuleDef{}, false
}

// ClearRegistry removes all registered rules. Used for testing.
func ClearRegistry() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.rules = nil
	registry.byID = make(map[string]int)
}
