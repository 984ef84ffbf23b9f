package workflow

import "fmt"

// Registry is the immutable table of registered transitions. Pure data:
// looking up or projecting over it has no side effects.
type Registry struct {
	byName  map[string]*Transition
	ordered []*Transition
	labels  map[string]string
}

// NewRegistry builds a registry from the given transitions. It panics on
// duplicate names or invalid states/roles, the same way the states table
// itself is checked at startup rather than per request.
func NewRegistry(transitions []*Transition, labels map[string]string) *Registry {
	r := &Registry{
		byName: make(map[string]*Transition, len(transitions)),
		labels: labels,
	}
	for _, t := range transitions {
		if t.Name == "" {
			panic("transition with empty name")
		}
		if _, exists := r.byName[t.Name]; exists {
			panic(fmt.Sprintf("duplicate transition name: %s", t.Name))
		}
		if !t.From.IsValid() {
			panic(fmt.Sprintf("transition %s: invalid source state %q", t.Name, t.From))
		}
		if !t.To.IsValid() {
			panic(fmt.Sprintf("transition %s: invalid target state %q", t.Name, t.To))
		}
		if len(t.Roles) == 0 {
			panic(fmt.Sprintf("transition %s: no allowed roles", t.Name))
		}
		for _, role := range t.Roles {
			if !role.IsValid() {
				panic(fmt.Sprintf("transition %s: invalid role %q", t.Name, role))
			}
		}
		r.byName[t.Name] = t
		r.ordered = append(r.ordered, t)
	}
	return r
}

// Lookup returns the transition registered under the given name
func (r *Registry) Lookup(name string) (*Transition, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Label returns the human-readable label for a transition name
func (r *Registry) Label(name string) string {
	if label, ok := r.labels[name]; ok {
		return label
	}
	return name
}

// Len returns the number of registered transitions
func (r *Registry) Len() int {
	return len(r.ordered)
}

// All returns the transitions in registration order
func (r *Registry) All() []*Transition {
	return append([]*Transition(nil), r.ordered...)
}

// AvailableTransitions projects the transitions legal from the given status
// for the given role. Advisory only: execution re-validates independently,
// so there is no read/execute race to worry about here.
func (r *Registry) AvailableTransitions(status Status, role Role) []TransitionView {
	views := make([]TransitionView, 0)
	for _, t := range r.ordered {
		if t.From == status && t.Allows(role) {
			views = append(views, TransitionView{
				Name:  t.Name,
				To:    t.To,
				Label: r.Label(t.Name),
			})
		}
	}
	return views
}

// DefaultRegistry returns the eleven-transition approval pipeline.
func DefaultRegistry() *Registry {
	return NewRegistry([]*Transition{
		{
			Name:  "validate",
			From:  StatusPending,
			To:    StatusReady,
			Guard: guardListingComplete,
			Roles: []Role{RoleSystem, RoleMarketing, RoleAdmin},
		},
		{
			Name:  "generate",
			From:  StatusReady,
			To:    StatusGenerating,
			Roles: []Role{RoleSystem, RoleMarketing, RoleAdmin},
		},
		{
			Name:   "complete_generation",
			From:   StatusGenerating,
			To:     StatusReview,
			Guard:  guardGenerationResult,
			Effect: effectCompleteGeneration,
			Roles:  []Role{RoleSystem},
		},
		{
			Name:   "fail_generation",
			From:   StatusGenerating,
			To:     StatusFailed,
			Effect: effectFailGeneration,
			Roles:  []Role{RoleSystem},
		},
		{
			Name:   "retry",
			From:   StatusFailed,
			To:     StatusGenerating,
			Guard:  guardRetryBudget,
			Effect: effectRetry,
			Roles:  []Role{RoleMarketing, RoleAdmin},
		},
		{
			Name:  "open_resonance",
			From:  StatusReview,
			To:    StatusRevision,
			Roles: []Role{RoleMarketing, RoleAdmin},
		},
		{
			Name:  "save_revision",
			From:  StatusRevision,
			To:    StatusReview,
			Roles: []Role{RoleMarketing, RoleAdmin},
		},
		{
			Name:   "submit_for_approval",
			From:   StatusReview,
			To:     StatusApproval,
			Guard:  guardQualityScore,
			Effect: effectSubmitForApproval,
			Roles:  []Role{RoleMarketing, RoleAdmin},
		},
		{
			Name:   "approve",
			From:   StatusApproval,
			To:     StatusApproved,
			Effect: effectApprove,
			Roles:  []Role{RoleBroker, RoleAdmin},
		},
		{
			Name:   "request_revisions",
			From:   StatusApproval,
			To:     StatusReview,
			Guard:  guardBrokerComments,
			Effect: effectRequestRevisions,
			Roles:  []Role{RoleBroker, RoleAdmin},
		},
		{
			Name:   "distribute",
			From:   StatusApproved,
			To:     StatusDistributed,
			Guard:  guardPDFPresent,
			Effect: effectDistribute,
			Roles:  []Role{RoleSystem, RoleMarketing, RoleAdmin},
		},
	}, map[string]string{
		"validate":            "Validate listing data",
		"generate":            "Start generation",
		"complete_generation": "Complete generation",
		"fail_generation":     "Mark generation failed",
		"retry":               "Retry generation",
		"open_resonance":      "Open for revision",
		"save_revision":       "Save revision",
		"submit_for_approval": "Submit for broker approval",
		"approve":             "Approve",
		"request_revisions":   "Request revisions",
		"distribute":          "Distribute",
	})
}
