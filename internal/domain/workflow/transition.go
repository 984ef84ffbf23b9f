package workflow

// Transition is a named, registered edge between two states. Guard and
// Effect may be nil for unguarded or field-neutral transitions.
type Transition struct {
	Name   string
	From   Status
	To     Status
	Guard  GuardFunc
	Effect EffectFunc
	Roles  []Role
}

// Allows reports whether the role is in the transition's allowed role set
func (t *Transition) Allows(role Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TransitionView is the projection returned by AvailableTransitions for
// presentation layers. It is advisory only: the engine re-validates at
// execution time.
type TransitionView struct {
	Name  string `json:"name"`
	To    Status `json:"to"`
	Label string `json:"label"`
}
