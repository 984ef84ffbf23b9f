package workflow

import (
	"reflect"
	"regexp"
	"testing"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"pending", StatusPending, true},
		{"ready", StatusReady, true},
		{"generating", StatusGenerating, true},
		{"review", StatusReview, true},
		{"revision", StatusRevision, true},
		{"approval", StatusApproval, true},
		{"approved", StatusApproved, true},
		{"distributed", StatusDistributed, true},
		{"failed", StatusFailed, true},
		{"unknown", Status("draft"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if !StatusDistributed.IsTerminal() {
		t.Error("distributed should be terminal")
	}
	if StatusFailed.IsTerminal() {
		t.Error("failed should not be terminal, retries leave it")
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, role := range []Role{RoleSystem, RoleMarketing, RoleBroker, RoleAdmin} {
		if !role.IsValid() {
			t.Errorf("role %s should be valid", role)
		}
	}
	if Role("intern").IsValid() {
		t.Error("unknown role should be invalid")
	}
}

func TestDefaultRegistry_Table(t *testing.T) {
	reg := DefaultRegistry()

	if reg.Len() != 11 {
		t.Fatalf("registry has %d transitions, want 11", reg.Len())
	}

	tests := []struct {
		name     string
		from     Status
		to       Status
		roles    []Role
		hasGuard bool
	}{
		{"validate", StatusPending, StatusReady, []Role{RoleSystem, RoleMarketing, RoleAdmin}, true},
		{"generate", StatusReady, StatusGenerating, []Role{RoleSystem, RoleMarketing, RoleAdmin}, false},
		{"complete_generation", StatusGenerating, StatusReview, []Role{RoleSystem}, true},
		{"fail_generation", StatusGenerating, StatusFailed, []Role{RoleSystem}, false},
		{"retry", StatusFailed, StatusGenerating, []Role{RoleMarketing, RoleAdmin}, true},
		{"open_resonance", StatusReview, StatusRevision, []Role{RoleMarketing, RoleAdmin}, false},
		{"save_revision", StatusRevision, StatusReview, []Role{RoleMarketing, RoleAdmin}, false},
		{"submit_for_approval", StatusReview, StatusApproval, []Role{RoleMarketing, RoleAdmin}, true},
		{"approve", StatusApproval, StatusApproved, []Role{RoleBroker, RoleAdmin}, false},
		{"request_revisions", StatusApproval, StatusReview, []Role{RoleBroker, RoleAdmin}, true},
		{"distribute", StatusApproved, StatusDistributed, []Role{RoleSystem, RoleMarketing, RoleAdmin}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := reg.Lookup(tt.name)
			if !ok {
				t.Fatalf("transition %s not registered", tt.name)
			}
			if tr.From != tt.from || tr.To != tt.to {
				t.Errorf("edge = %s->%s, want %s->%s", tr.From, tr.To, tt.from, tt.to)
			}
			if !reflect.DeepEqual(tr.Roles, tt.roles) {
				t.Errorf("roles = %v, want %v", tr.Roles, tt.roles)
			}
			if (tr.Guard != nil) != tt.hasGuard {
				t.Errorf("guard presence = %v, want %v", tr.Guard != nil, tt.hasGuard)
			}
		})
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := DefaultRegistry()
	if _, ok := reg.Lookup("teleport"); ok {
		t.Error("Lookup() should not find an unregistered transition")
	}
}

func TestRegistry_AvailableTransitions(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name   string
		status Status
		role   Role
		want   []string
	}{
		{"marketing in review", StatusReview, RoleMarketing, []string{"open_resonance", "submit_for_approval"}},
		{"broker in review", StatusReview, RoleBroker, []string{}},
		{"broker in approval", StatusApproval, RoleBroker, []string{"approve", "request_revisions"}},
		{"system in generating", StatusGenerating, RoleSystem, []string{"complete_generation", "fail_generation"}},
		{"marketing in generating", StatusGenerating, RoleMarketing, []string{}},
		{"admin in failed", StatusFailed, RoleAdmin, []string{"retry"}},
		{"anyone in distributed", StatusDistributed, RoleAdmin, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := reg.AvailableTransitions(tt.status, tt.role)
			got := make([]string, 0, len(views))
			for _, v := range views {
				got = append(got, v.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AvailableTransitions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_AvailableTransitionsCarriesLabels(t *testing.T) {
	reg := DefaultRegistry()
	views := reg.AvailableTransitions(StatusApproval, RoleBroker)
	for _, v := range views {
		if v.Label == "" {
			t.Errorf("transition %s has no label", v.Name)
		}
		if v.To == "" {
			t.Errorf("transition %s has no target state", v.Name)
		}
	}
}

func TestNewRegistry_PanicsOnDuplicateName(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRegistry() should panic on duplicate transition name")
		}
	}()

	NewRegistry([]*Transition{
		{Name: "validate", From: StatusPending, To: StatusReady, Roles: []Role{RoleAdmin}},
		{Name: "validate", From: StatusReady, To: StatusGenerating, Roles: []Role{RoleAdmin}},
	}, nil)
}

func TestNewRegistry_PanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRegistry() should panic on invalid state")
		}
	}()

	NewRegistry([]*Transition{
		{Name: "warp", From: Status("limbo"), To: StatusReady, Roles: []Role{RoleAdmin}},
	}, nil)
}

func TestNewRegistry_PanicsOnEmptyRoles(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRegistry() should panic when a transition has no roles")
		}
	}()

	NewRegistry([]*Transition{
		{Name: "orphan", From: StatusPending, To: StatusReady},
	}, nil)
}

func TestNotificationFor(t *testing.T) {
	spec, ok := NotificationFor("request_revisions")
	if !ok {
		t.Fatal("request_revisions should have a notification mapping")
	}
	if len(spec.Recipients) == 0 || spec.Template == "" {
		t.Error("notification spec should carry recipients and a template")
	}

	if _, ok := NotificationFor("generate"); ok {
		t.Error("generate should not notify anyone")
	}
}

func TestNotificationTemplatesResolvable(t *testing.T) {
	// Keys available to templates: draft_id plus the transition event payload.
	known := map[string]bool{
		"draft_id":       true,
		"transition":     true,
		"from":           true,
		"to":             true,
		"actor_id":       true,
		"actor_role":     true,
		"comments":       true,
		"quality_score":  true,
		"failure_reason": true,
		"channels":       true,
	}

	placeholderRe := regexp.MustCompile(`\{\{([^}]*)\}\}`)
	for transition, spec := range notificationMap {
		for _, m := range placeholderRe.FindAllStringSubmatch(spec.Template, -1) {
			if !known[m[1]] {
				t.Errorf("transition %q template references %q, which no payload supplies", transition, m[0])
			}
		}
	}
}
