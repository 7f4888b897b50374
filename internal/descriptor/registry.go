package descriptor

import (
	"fmt"
	"sync"
)

// Registry holds the descriptors of all available actions, keyed by
// action_id. Registration overwrites silently, so definition order never
// matters; completeness is checked separately (ValidateCompleteness) by test
// suites or a startup probe before traffic is served.
//
// Registration only happens during startup in practice, but the registry is
// shared process-wide state, so access is guarded for concurrent hosts.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*ActionDescriptor
}

// NewRegistry returns an empty registry. Callers own the instance and pass
// it to whatever needs descriptor metadata; there is no package-level
// singleton.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]*ActionDescriptor)}
}

// Register inserts or overwrites the descriptor under its ActionID. It
// always succeeds.
func (r *Registry) Register(d *ActionDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[d.ActionID] = d
}

// Get returns the descriptor for actionID, or nil when absent.
func (r *Registry) Get(actionID string) *ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[actionID]
}

// ListAll returns a snapshot of all registered descriptors. Order is not
// contractually meaningful.
func (r *Registry) ListAll() []*ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ActionDescriptor, 0, len(r.actions))
	for _, d := range r.actions {
		out = append(out, d)
	}
	return out
}

// Export dumps the full registry as action_id -> descriptor, for external
// consumers such as a UI metadata endpoint.
func (r *Registry) Export() map[string]*ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*ActionDescriptor, len(r.actions))
	for id, d := range r.actions {
		out[id] = d
	}
	return out
}

// ValidateCompleteness checks that the action has every element a fully
// governed action needs. It returns (true, empty) when complete, otherwise
// (false, errors) with one independent error per missing element. Not
// invoked on the request path.
func (r *Registry) ValidateCompleteness(actionID string) (bool, []string) {
	d := r.Get(actionID)
	if d == nil {
		return false, []string{fmt.Sprintf("Action '%s' not found in registry", actionID)}
	}

	var errs []string
	if len(d.UIFields) == 0 {
		errs = append(errs, "No UI fields defined")
	}
	if len(d.GraphNodes) == 0 {
		errs = append(errs, "No graph nodes defined")
	}
	if d.AuditDescriptor.SummaryTemplate == "" {
		errs = append(errs, "No audit summary template defined")
	}
	if len(d.SHACLConstraints) == 0 {
		errs = append(errs, "No SHACL constraints defined")
	}
	if len(d.ODRLPolicies) == 0 {
		errs = append(errs, "No ODRL policies defined")
	}
	if d.HandlerFunction == "" {
		errs = append(errs, "No handler function specified")
	}
	if d.ValidationClass == "" {
		errs = append(errs, "No validation class specified")
	}
	return len(errs) == 0, errs
}
